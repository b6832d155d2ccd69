package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const countersKey = "counters"

// Counters tallies what a handler produced for the update summary line.
// Messages handed to the sender queue count as sent.
type Counters struct {
	Sent     int
	Edited   int
	Keyboard bool
	Answered bool
}

// Record adds n outgoing messages; kb marks that one of them carried a keyboard.
func (k *Counters) Record(n int, kb bool) {
	k.Sent += n
	k.Keyboard = k.Keyboard || kb
}

// CountersOf returns the counters installed by MessageMetricsMiddleware. Without
// the middleware it returns a detached zero value, so callers never check for nil.
func CountersOf(c tele.Context) *Counters {
	if k, ok := c.Get(countersKey).(*Counters); ok {
		return k
	}
	return &Counters{}
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// metricsContext counts the calls handlers make on the update's own chat.
type metricsContext struct {
	tele.Context
	k *Counters
}

func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.k.Record(1, hasKeyboard(opts))
	}
	return err
}

func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.k.Edited++
		m.k.Keyboard = m.k.Keyboard || hasKeyboard(opts)
	}
	return err
}

func (m metricsContext) EditCaption(caption string, opts ...interface{}) error {
	err := m.Context.EditCaption(caption, opts...)
	if err == nil {
		m.k.Edited++
		m.k.Keyboard = m.k.Keyboard || hasKeyboard(opts)
	}
	return err
}

func (m metricsContext) Respond(resp ...*tele.CallbackResponse) error {
	err := m.Context.Respond(resp...)
	if err == nil {
		m.k.Answered = true
	}
	return err
}

// MessageMetricsMiddleware installs fresh Counters for the update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		k := &Counters{}
		c.Set(countersKey, k)
		return next(metricsContext{Context: c, k: k})
	}
}
