package streamable

// Message is a sealed interface representing a conversation message.
// The unexported marker method prevents external implementations.
// Role() returns the message's role without requiring a type switch.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage represents a message from the user.
type UserMessage struct {
	Content []ContentBlock
}

func (UserMessage) isMessage() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage represents a message from the assistant.
type AssistantMessage struct {
	Content []ContentBlock
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// FunctionResultMessage carries the result of a function or tool call
// back to the model.
type FunctionResultMessage struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

func (FunctionResultMessage) isMessage() {}

// Role returns RoleFunction.
func (FunctionResultMessage) Role() Role { return RoleFunction }

// ContentBlock is a sealed interface representing a block of content.
// The unexported marker method prevents external implementations.
type ContentBlock interface {
	contentBlock()
}

// TextBlock contains text content.
type TextBlock struct {
	Text string
}

func (TextBlock) contentBlock() {}

// FunctionCallBlock records a function or tool call made by the
// assistant.
type FunctionCallBlock struct {
	Call FunctionCall
}

func (FunctionCallBlock) contentBlock() {}

// Interface compliance checks.
var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}
	_ Message = FunctionResultMessage{}

	_ ContentBlock = TextBlock{}
	_ ContentBlock = FunctionCallBlock{}
)
