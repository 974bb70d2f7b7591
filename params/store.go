package params

import "sync"

// Field names, matching the service's wire keys.
const (
	FieldText         = "text"
	FieldPaperX       = "paper_x"
	FieldPaperY       = "paper_y"
	FieldFont         = "font"
	FieldFontSize     = "font_size"
	FieldLineSpacing  = "line_spacing"
	FieldWordSpacing  = "word_spacing"
	FieldMargins      = "margins"
	FieldBackground   = "background_color"
	FieldFontColor    = "font_color"
	FieldPerturbation = "perturbation"
	FieldRate         = "rate"
)

// Change describes one mutation of the store.
type Change struct {
	Field string
	Model Model
}

// Listener receives every change applied to a Store.
type Listener func(Change)

// Store owns the live Model of a session. Setters replace a whole sub-record;
// nothing in a returned Model is shared with the store.
type Store struct {
	mu        sync.RWMutex
	model     Model
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store holding initial.
func NewStore(initial Model) *Store {
	return &Store{
		model:     initial,
		listeners: make(map[int]Listener),
	}
}

// NewDefaultStore creates a store holding Default().
func NewDefaultStore() *Store {
	return NewStore(Default())
}

// Snapshot returns a copy of the current model.
func (s *Store) Snapshot() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Subscribe registers fn for change notifications and returns a function that
// removes it again.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// update applies fn to a copy of the model, swaps it in and notifies
// listeners outside the lock.
func (s *Store) update(field string, fn func(m Model) Model) {
	s.mu.Lock()
	next := fn(s.model)
	s.model = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	change := Change{Field: field, Model: next}
	for _, l := range listeners {
		l(change)
	}
}

// Replace swaps in a whole model, e.g. one loaded from a preset.
func (s *Store) Replace(m Model) {
	s.update("", func(Model) Model { return m })
}

func (s *Store) SetText(text string) {
	s.update(FieldText, func(m Model) Model { m.Text = text; return m })
}

func (s *Store) SetPaperX(x float64) {
	s.update(FieldPaperX, func(m Model) Model { m.PaperX = x; return m })
}

func (s *Store) SetPaperY(y float64) {
	s.update(FieldPaperY, func(m Model) Model { m.PaperY = y; return m })
}

func (s *Store) SetFont(font string) {
	s.update(FieldFont, func(m Model) Model { m.Font = font; return m })
}

func (s *Store) SetFontSize(size float64) {
	s.update(FieldFontSize, func(m Model) Model { m.FontSize = size; return m })
}

func (s *Store) SetLineSpacing(spacing float64) {
	s.update(FieldLineSpacing, func(m Model) Model { m.LineSpacing = spacing; return m })
}

func (s *Store) SetWordSpacing(spacing float64) {
	s.update(FieldWordSpacing, func(m Model) Model { m.WordSpacing = spacing; return m })
}

// SetMargins replaces all four margins at once.
func (s *Store) SetMargins(margins Margins) {
	s.update(FieldMargins, func(m Model) Model { m.Margins = margins; return m })
}

// UpdateMargins derives a new Margins record from the current one.
func (s *Store) UpdateMargins(fn func(Margins) Margins) {
	s.update(FieldMargins, func(m Model) Model { m.Margins = fn(m.Margins); return m })
}

// SetBackgroundColor stores c with its channels clamped into range.
func (s *Store) SetBackgroundColor(c Color) {
	s.update(FieldBackground, func(m Model) Model { m.Background = c.Clamped(); return m })
}

// SetFontColor stores c with its channels clamped into range.
func (s *Store) SetFontColor(c Color) {
	s.update(FieldFontColor, func(m Model) Model { m.FontColor = c.Clamped(); return m })
}

// SetBackgroundHex decodes hex and stores it. On error the previous color is
// kept and the error returned.
func (s *Store) SetBackgroundHex(hex string) error {
	c, err := ParseColor(hex)
	if err != nil {
		return err
	}
	s.SetBackgroundColor(c)
	return nil
}

// SetFontColorHex decodes hex and stores it. On error the previous color is
// kept and the error returned.
func (s *Store) SetFontColorHex(hex string) error {
	c, err := ParseColor(hex)
	if err != nil {
		return err
	}
	s.SetFontColor(c)
	return nil
}

func (s *Store) SetPerturbation(p Perturbation) {
	s.update(FieldPerturbation, func(m Model) Model { m.Perturbation = p; return m })
}

// UpdatePerturbation derives a new Perturbation record from the current one.
func (s *Store) UpdatePerturbation(fn func(Perturbation) Perturbation) {
	s.update(FieldPerturbation, func(m Model) Model { m.Perturbation = fn(m.Perturbation); return m })
}

func (s *Store) SetRate(rate int) {
	s.update(FieldRate, func(m Model) Model { m.Rate = rate; return m })
}
