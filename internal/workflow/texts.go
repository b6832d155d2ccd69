package workflow

import (
	"fmt"
	"strings"

	"github.com/m3rciful/applybot/core/telegram/format"
	"github.com/m3rciful/applybot/internal/store"
)

const (
	roleAdmin  = "ADMIN"
	roleWorker = "WORKER"
)

const (
	msgQuestionSource     = "1️⃣ <b>Откуда вы узнали о нас?</b>"
	msgQuestionExperience = "2️⃣ <b>Каков ваш опыт работы?</b>"
	msgQuestionTime       = "3️⃣ <b>Сколько времени готовы уделять?</b>"
	msgApplicationSent    = "✅ Заявка отправлена. Ожидайте решения."

	msgApproved     = "✅ <b>Ваша заявка одобрена</b>"
	msgRejected     = "❌ Ваша заявка отклонена"
	msgMenuFallback = "🏠 Главное меню"
	msgAccessDenied = "Нет доступа"
	ackApproved     = "Принято"
	ackRejected     = "Отклонено"

	msgChooseService  = "🔗 <b>Выберите сервис</b>"
	msgUseServiceKeys = "👆 Выберите сервис кнопками выше"
	msgPriceNotNumber = "❌ Введите число"

	msgYourLinks  = "📋 <b>Ваши объявления</b>"
	msgNoLinks    = "❌ Нет объявлений"
	msgLinksEmpty = "📭 Объявлений нет"
	ackDeleted    = "Удалено"
	ackDeletedAll = "Все удалено"

	msgCancelled       = "↩️ Действие отменено"
	msgNothingToCancel = "Нечего отменять"
	msgNoPending       = "📭 Новых заявок нет"

	btnCreateLink = "🔥 Создать ссылку"
	btnMyLinks    = "❤️ Мои объявления"
	btnBackToMenu = "⬅️ В меню"
	btnDelete     = "❌ Удалить"
	btnDeleteAll  = "❌ Удалить все"
	btnApprove    = "✅ Принять"
	btnReject     = "❌ Отклонить"
)

var serviceLabels = map[store.Service]string{
	store.ServiceViber:  "📞 Viber",
	store.ServicePrivat: "🏦 Privat",
	store.ServicePUMB:   "🏦 PUMB",
	store.ServiceOshad:  "🏦 Oshad",
	store.ServiceMulti:  "🌐 Multi",
}

func mainMenuKeyboard() Keyboard {
	return Keyboard{
		{button(btnCreateLink, Payload{Action: ActionCreateLink})},
		{button(btnMyLinks, Payload{Action: ActionShowLinks})},
	}
}

// servicesKeyboard lays services out two per row followed by a back button.
func servicesKeyboard() Keyboard {
	var kb Keyboard
	var row []Button
	for _, svc := range store.Services() {
		row = append(row, button(serviceLabels[svc], Payload{Action: ActionService, Service: svc}))
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	return append(kb, []Button{button(btnBackToMenu, Payload{Action: ActionBackToMenu})})
}

func decisionKeyboard(userID int64) Keyboard {
	return Keyboard{{
		button(btnApprove, Payload{Action: ActionApprove, ID: userID}),
		button(btnReject, Payload{Action: ActionReject, ID: userID}),
	}}
}

func linksKeyboard(links []store.Link) Keyboard {
	kb := make(Keyboard, 0, len(links)+2)
	for i, l := range links {
		kb = append(kb, []Button{
			button(linkLabel(l), Payload{Action: ActionNoop}),
			button(btnDelete, Payload{Action: ActionDelete, ID: int64(i)}),
		})
	}
	kb = append(kb,
		[]Button{button(btnDeleteAll, Payload{Action: ActionDeleteAll})},
		[]Button{button(btnBackToMenu, Payload{Action: ActionBackToMenu})},
	)
	return kb
}

func linkLabel(l store.Link) string {
	return fmt.Sprintf("%s | %s₴", l.Service, l.Price)
}

// greeting renders the role-aware main menu caption.
func greeting(u User, role string) string {
	name := format.FirstNonEmpty(u.FirstName, "Пользователь")
	who := strings.TrimSpace(format.EscapeHTML(name) + " " + format.Mention(u.Username))
	return fmt.Sprintf("👋 <b>Привет, %s</b>\n🔑 Твоя роль: <b>%s</b>\n\n⚡ Доступные действия:", who, role)
}

func applicationCard(app store.Application) string {
	var b strings.Builder
	b.WriteString("📝 <b>Новая заявка</b>\n\n")
	fmt.Fprintf(&b, "👤 ID: <code>%d</code>", app.UserID)
	if who := strings.TrimSpace(format.EscapeHTML(app.FirstName) + " " + format.Mention(app.Username)); who != "" {
		fmt.Fprintf(&b, " (%s)", who)
	}
	fmt.Fprintf(&b, "\n📍 Источник: %s", format.EscapeHTML(app.Source))
	fmt.Fprintf(&b, "\n🧠 Опыт: %s", format.EscapeHTML(app.Experience))
	fmt.Fprintf(&b, "\n⏳ Время: %s", format.EscapeHTML(app.AvailableTime))
	return b.String()
}

func pricePrompt(svc store.Service) string {
	return fmt.Sprintf("💰 Введите стоимость для <b>%s</b>", svc)
}

func linkCreated(l store.Link) string {
	return fmt.Sprintf("✅ Ссылка создана\n<b>%s</b>\n%s", linkLabel(l), format.EscapeHTML(l.Link))
}
