package booking

import "log"

// undoStack collects compensating actions while a multi-step operation is in
// flight. Any failure unwinds the stack in reverse order, so the inventory
// ledger looks untouched by the failed attempt before the error surfaces.
type undoAction struct {
	name string
	run  func() error
}

type undoStack struct {
	actions []undoAction
}

func (s *undoStack) push(name string, run func() error) {
	s.actions = append(s.actions, undoAction{name: name, run: run})
}

func (s *undoStack) unwind() {
	for i := len(s.actions) - 1; i >= 0; i-- {
		action := s.actions[i]
		if err := action.run(); err != nil {
			// Compensation must not stop halfway; log and keep unwinding.
			log.Printf("Error compensating [%s]: %s\n", action.name, err.Error())
		}
	}
	s.actions = nil
}

func (s *undoStack) discard() {
	s.actions = nil
}
