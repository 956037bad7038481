package dispatch

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	pinMin  = 100000
	pinSpan = 900000
)

// PINSource produces dispatch PINs.
type PINSource func() (string, error)

// GeneratePIN returns a uniformly random six digit PIN in 100000-999999.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpan))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+pinMin), nil
}
