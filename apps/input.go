package apps

// Pointer is the trackball as the apps see it. Each method consumes the pending burst when it
// returns true.
type Pointer interface {
	MovedUp() bool
	MovedDown() bool
	MovedLeft() bool
	MovedRight() bool
	Clicked() bool
}

// KeySource yields typed keys.
type KeySource interface {
	Key() (byte, bool)
}

// Input is everything an app may read during a frame.
type Input interface {
	Pointer
	KeySource
}

type combinedInput struct {
	Pointer
	keys KeySource
}

// NewInput combines a trackball and a keyboard. keys may be nil on devices without a keyboard.
func NewInput(pointer Pointer, keys KeySource) Input {
	return &combinedInput{Pointer: pointer, keys: keys}
}

func (in *combinedInput) Key() (byte, bool) {
	if in.keys == nil {
		return 0, false
	}
	return in.keys.Key()
}
