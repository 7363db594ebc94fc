package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	ChatMessageKindText   = "text"
	ChatMessageKindImage  = "image"
	ChatMessageKindLocked = "locked"

	// Delivery states for the optimistic-insert lifecycle.
	MessageDeliveryPending   = "pending"
	MessageDeliveryConfirmed = "confirmed"
	MessageDeliveryFailed    = "failed"

	// LocalMessageIdPrefix namespaces client-generated ids so they can never
	// collide with server-issued ones.
	LocalMessageIdPrefix = "local-"

	SendRequestTypeChat  = "chat"
	SendRequestTypePhoto = "photo"

	// PhotoRequestText is the literal user message sent by the "request photo"
	// action. The backend keys off the request type, not the text.
	PhotoRequestText = "Can you send me a photo?"

	ExchangeCompletedTopic = "chat.exchange.completed"

	// Hydration gate flag names, one per persisted partition.
	HydrationFlagSessions = "sessions"
	HydrationFlagMessages = "messages"
	HydrationFlagWallet   = "wallet"
)
