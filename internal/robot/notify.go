package robot

// Field identifies an observable property of a Robot.
type Field int

const (
	FieldZeroPosition Field = iota
	FieldFirstPosition
	FieldSecondPosition
	FieldThirdPosition
	FieldAnimationFirstPosition
	FieldAnimationSecondPosition
	FieldDestinationPosition
	FieldL1
	FieldL2
	FieldMaxRange
	FieldMinRange
)

func (f Field) String() string {
	switch f {
	case FieldZeroPosition:
		return "ZeroPosition"
	case FieldFirstPosition:
		return "FirstPosition"
	case FieldSecondPosition:
		return "SecondPosition"
	case FieldThirdPosition:
		return "ThirdPosition"
	case FieldAnimationFirstPosition:
		return "AnimationFirstPosition"
	case FieldAnimationSecondPosition:
		return "AnimationSecondPosition"
	case FieldDestinationPosition:
		return "DestinationPosition"
	case FieldL1:
		return "L1"
	case FieldL2:
		return "L2"
	case FieldMaxRange:
		return "MaxRange"
	case FieldMinRange:
		return "MinRange"
	default:
		return "unknown"
	}
}

type observer struct {
	id int
	fn func(Field)
}

// notifier is the robot's list of change callbacks.
type notifier struct {
	observers []observer
	nextID    int
}

func (n *notifier) add(fn func(Field)) (cancel func()) {
	id := n.nextID
	n.nextID++
	n.observers = append(n.observers, observer{id: id, fn: fn})
	return func() { n.remove(id) }
}

func (n *notifier) remove(id int) {
	for i, o := range n.observers {
		if o.id == id {
			n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
			return
		}
	}
}

func (n *notifier) notify(f Field) {
	for _, o := range n.observers {
		o.fn(f)
	}
}
