package sapling

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keypress is one key with its modifiers. Letter keys are lower case; a
// capital letter is the lower-case key with Shift.
type Keypress struct {
	Key   string
	Ctrl  bool
	Shift bool
}

func (k Keypress) String() string {
	var b strings.Builder
	if k.Ctrl {
		b.WriteString("ctrl-")
	}
	if k.Shift {
		b.WriteString("shift-")
	}
	b.WriteString(k.Key)
	return b.String()
}

var keyAliases = map[string]string{
	"esc":        "escape",
	"return":     "enter",
	"uparrow":    "up",
	"downarrow":  "down",
	"leftarrow":  "left",
	"rightarrow": "right",
}

// ParseKeypress reads keys written like "j", "O", "ctrl-r", "shift-tab" or
// "escape".
func ParseKeypress(s string) (Keypress, error) {
	parts := strings.Split(s, "-")
	var k Keypress
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "ctrl":
			k.Ctrl = true
		case "shift":
			k.Shift = true
		default:
			return Keypress{}, fmt.Errorf("parse key %q: unknown modifier %q", s, mod)
		}
	}
	key := parts[len(parts)-1]
	if key == "" {
		return Keypress{}, fmt.Errorf("parse key %q: missing key", s)
	}
	if r, size := utf8.DecodeRuneInString(key); size == len(key) && unicode.IsUpper(r) {
		k.Shift = true
	}
	key = strings.ToLower(key)
	if alias, ok := keyAliases[key]; ok {
		key = alias
	}
	k.Key = key
	return k, nil
}

// HandleKeypress runs the command bound to k. While a menu is open only the
// menu keys do anything.
//
//	k/up j/down       previous / next line
//	h/b/left l/w/right back / forward
//	c                 edit the selected leaf
//	d                 delete the selected statement or list element
//	a                 append to the selected list
//	r                 replace the selection
//	W (shift-w)       wrap the selection
//	o / O             new line below / above
//	e                 extract the selection into a variable
//	u / ctrl-r        undo / redo
//	V (shift-v)       select the whole line
//	tab / shift-tab   next / previous menu option
//	enter             confirm the menu
//	escape            cancel the edit
func (s *Session) HandleKeypress(k Keypress) error {
	if k.Key == "escape" {
		s.Cancel()
		return nil
	}
	if s.editing {
		switch {
		case k.Key == "tab" && k.Shift, k.Key == "up":
			if s.menu != nil {
				return s.SelectPrevOption()
			}
		case k.Key == "tab", k.Key == "down":
			if s.menu != nil {
				return s.SelectNextOption()
			}
		case k.Key == "enter":
			return s.ConfirmMenu()
		}
		return nil
	}

	switch k.Key {
	case "k", "up":
		s.NavigateUp()
	case "j", "down":
		s.NavigateDown()
	case "h", "b", "left":
		s.NavigateBack()
	case "l", "right":
		s.NavigateForward()
	case "w":
		if k.Shift {
			if s.selected == NilID {
				return ErrNothingSelected
			}
			return s.EnterWrapForNode(s.selected)
		}
		s.NavigateForward()
	case "c":
		return s.EditSelected()
	case "d":
		return s.DeleteSelectedCode()
	case "a":
		return s.AppendInSelected()
	case "r":
		if k.Ctrl {
			s.Redo()
			return nil
		}
		if s.selected == NilID {
			return ErrNothingSelected
		}
		return s.EnterReplaceForNode(s.selected)
	case "o":
		return s.InsertLine(k.Shift)
	case "e":
		if s.selected == NilID {
			return ErrNothingSelected
		}
		return s.ExtractIntoVariable(s.selected)
	case "u":
		s.Undo()
	case "v":
		if k.Shift {
			return s.SelectCurrentLine()
		}
	}
	return nil
}
