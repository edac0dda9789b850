package domain

// Action is the payload of a service message: *PinMessage,
// *ChatEditPhoto, *ChannelCreate or *UnknownAction.
type Action interface {
	isAction()
}

type PinMessage struct {
	MessageID int
}

type ChatEditPhoto struct {
	Photo *Photo
}

type ChannelCreate struct {
	Title string
}

// UnknownAction is any other service event. It renders nothing.
type UnknownAction struct {
	Type string
}

func (*PinMessage) isAction()    {}
func (*ChatEditPhoto) isAction() {}
func (*ChannelCreate) isAction() {}
func (*UnknownAction) isAction() {}
