package otp

import (
	"strings"

	"github.com/pkg/errors"
)

// CodeLength is the number of digits in every code the account service sends.
const CodeLength = 6

// Digits models a code entered one slot at a time. A code is only
// submitted once every slot holds a digit.
type Digits struct {
	slots [CodeLength]rune
}

// Set stores r in slot i. Only ASCII digits are accepted.
func (d *Digits) Set(i int, r rune) error {
	if i < 0 || i >= CodeLength {
		return errors.Errorf("slot %d out of range", i)
	}
	if r < '0' || r > '9' {
		return errors.Errorf("slot %d: %q is not a digit", i, r)
	}
	d.slots[i] = r
	return nil
}

// Clear empties slot i.
func (d *Digits) Clear(i int) {
	if i >= 0 && i < CodeLength {
		d.slots[i] = 0
	}
}

// Paste fills slots from the digits in s, in order, ignoring anything that
// is not a digit. Slots beyond the digits supplied are left empty.
func (d *Digits) Paste(s string) {
	d.slots = [CodeLength]rune{}
	i := 0
	for _, r := range s {
		if i == CodeLength {
			break
		}
		if r >= '0' && r <= '9' {
			d.slots[i] = r
			i++
		}
	}
}

// Filled reports whether every slot holds a digit.
func (d *Digits) Filled() bool {
	for _, r := range d.slots {
		if r == 0 {
			return false
		}
	}
	return true
}

// Code returns the digits entered so far, in slot order.
func (d *Digits) Code() string {
	var b strings.Builder
	for _, r := range d.slots {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCode reports whether code is exactly CodeLength ASCII digits.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
