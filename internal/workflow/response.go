package workflow

// ResponseKind selects the gateway operation a Response maps to.
type ResponseKind int

const (
	// SendText posts a new text message to ChatID.
	SendText ResponseKind = iota + 1
	// SendPhoto posts Photo with Text as caption to ChatID.
	SendPhoto
	// EditCaption replaces the caption of the message the callback came from.
	EditCaption
	// EditMedia replaces photo and caption of the callback message.
	EditMedia
	// Answer acknowledges the callback query, optionally as an alert.
	Answer
)

func (k ResponseKind) String() string {
	switch k {
	case SendText:
		return "send_text"
	case SendPhoto:
		return "send_photo"
	case EditCaption:
		return "edit_caption"
	case EditMedia:
		return "edit_media"
	case Answer:
		return "answer"
	}
	return "unknown"
}

// Button is one inline trigger bound to encoded callback data.
type Button struct {
	Text string
	Data string
}

// Keyboard is a list of button rows.
type Keyboard [][]Button

// Response is a gateway-agnostic instruction produced by a handler.
// Text is HTML formatted.
type Response struct {
	Kind     ResponseKind
	ChatID   int64
	Text     string
	Photo    string
	Alert    bool
	Keyboard Keyboard
}

func textTo(chatID int64, text string, kb Keyboard) Response {
	return Response{Kind: SendText, ChatID: chatID, Text: text, Keyboard: kb}
}

func photoTo(chatID int64, photo, caption string, kb Keyboard) Response {
	return Response{Kind: SendPhoto, ChatID: chatID, Photo: photo, Text: caption, Keyboard: kb}
}

func editCaption(caption string, kb Keyboard) Response {
	return Response{Kind: EditCaption, Text: caption, Keyboard: kb}
}

func editMedia(photo, caption string, kb Keyboard) Response {
	return Response{Kind: EditMedia, Photo: photo, Text: caption, Keyboard: kb}
}

func answer(text string) Response {
	return Response{Kind: Answer, Text: text}
}

func alert(text string) Response {
	return Response{Kind: Answer, Text: text, Alert: true}
}

func button(text string, p Payload) Button {
	return Button{Text: text, Data: p.String()}
}

func hasAnswer(out []Response) bool {
	for _, r := range out {
		if r.Kind == Answer {
			return true
		}
	}
	return false
}
