package tray

// iconSlot holds at most one live icon. Replace and Release free the held
// icon exactly once.
type iconSlot struct {
	icon Icon
}

func (s *iconSlot) Get() Icon {
	return s.icon
}

// Set stores icon in an empty slot. A held icon is released first.
func (s *iconSlot) Set(icon Icon) {
	_ = s.Replace(icon)
}

// Replace releases the held icon and stores next. The error is the release
// error of the previous icon; next is stored regardless.
func (s *iconSlot) Replace(next Icon) error {
	prev := s.icon
	s.icon = next
	if prev == nil || prev == next {
		return nil
	}
	return prev.Release()
}

func (s *iconSlot) Release() error {
	prev := s.icon
	s.icon = nil
	if prev == nil {
		return nil
	}
	return prev.Release()
}
