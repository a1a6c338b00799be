package spell

// Stack holds the frames in flight, newest last. Only the tail frame is
// ever advanced; pushing mid-spell is how nested casts preempt their
// parents.
type Stack struct {
	frames []*Frame
}

// Push appends a frame at the tail.
func (s *Stack) Push(f *Frame) {
	if f == nil {
		return
	}
	s.frames = append(s.frames, f)
}

// Top returns the tail frame, or nil when the stack is idle.
func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Pop removes and returns the tail frame.
func (s *Stack) Pop() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	tail := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return tail
}

// Len returns the number of frames in flight.
func (s *Stack) Len() int {
	return len(s.frames)
}

// Prune removes every frame, at any depth, for which drop returns true.
// Dropped frames are reported in bottom-up order so callers can log them.
func (s *Stack) Prune(drop func(*Frame) bool) []*Frame {
	if drop == nil || len(s.frames) == 0 {
		return nil
	}
	var dropped []*Frame
	kept := s.frames[:0]
	for _, f := range s.frames {
		if drop(f) {
			dropped = append(dropped, f)
			continue
		}
		kept = append(kept, f)
	}
	for i := len(kept); i < len(s.frames); i++ {
		s.frames[i] = nil
	}
	s.frames = kept
	return dropped
}
