package transport

type ConnectOptions struct {
	OpenCallback    func()
	MessageCallback func(message ServerMessage)
	ErrorCallback   func(err error)
	CloseCallback   func(err error)

	Voice             string
	Model             string
	SystemInstruction string
}

type ConnectOption func(*ConnectOptions)

func WithOpenCallback(callback func()) ConnectOption {
	return func(o *ConnectOptions) {
		o.OpenCallback = callback
	}
}

func WithMessageCallback(callback func(message ServerMessage)) ConnectOption {
	return func(o *ConnectOptions) {
		o.MessageCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) ConnectOption {
	return func(o *ConnectOptions) {
		o.ErrorCallback = callback
	}
}

func WithCloseCallback(callback func(err error)) ConnectOption {
	return func(o *ConnectOptions) {
		o.CloseCallback = callback
	}
}

func WithVoice(voice string) ConnectOption {
	return func(o *ConnectOptions) {
		o.Voice = voice
	}
}

func WithModel(model string) ConnectOption {
	return func(o *ConnectOptions) {
		o.Model = model
	}
}

func WithSystemInstruction(instruction string) ConnectOption {
	return func(o *ConnectOptions) {
		o.SystemInstruction = instruction
	}
}
