// Package acctnum generates and validates checksum-guarded account numbers.
//
// An account number is built from three parts:
//
//	ServiceCode (3 digits) + body (8 random digits) + check character (1)
//
// The check character is computed with a Modulo-11 scheme so that a verifier
// can detect transcription errors without a storage round trip.
package acctnum

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ServiceCode is the fixed institution prefix for every generated number.
const ServiceCode = "177"

const (
	bodyDigits = 8
	bodyMin    = 10_000_000
	bodySpan   = 90_000_000 // bodies are drawn from [bodyMin, bodyMin+bodySpan)
)

// Generate returns a fresh account number. The 8-digit body is drawn
// uniformly from crypto/rand, so the leading digit is never zero and the
// width is always exactly bodyDigits.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(bodySpan))
	if err != nil {
		return "", fmt.Errorf("acctnum: draw body: %w", err)
	}
	body := fmt.Sprintf("%d", bodyMin+n.Int64())
	return ServiceCode + body + string(CheckDigit(body)), nil
}

// CheckDigit computes the Modulo-11 check character for a digit string.
//
// Digits are scanned right to left with weights 2, 3, 4, ... The weighted sum
// is reduced mod 11 and subtracted from 11; a check value of 10 maps to 'X'
// and 11 maps to '0'.
func CheckDigit(body string) byte {
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
	}

	checkValue := 11 - sum%11
	switch checkValue {
	case 10:
		return 'X'
	case 11:
		return '0'
	default:
		return byte('0' + checkValue)
	}
}

// Validate reports whether checkChar is the correct check character for body.
// It is the exact inverse of the check-digit step in Generate.
func Validate(body string, checkChar byte) bool {
	if len(body) == 0 {
		return false
	}
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return false
		}
	}
	return CheckDigit(body) == checkChar
}

// ValidateNumber checks a full account number: service code prefix, an
// 8-digit body and a trailing check character.
func ValidateNumber(number string) bool {
	if len(number) != len(ServiceCode)+bodyDigits+1 {
		return false
	}
	if number[:len(ServiceCode)] != ServiceCode {
		return false
	}
	body := number[len(ServiceCode) : len(number)-1]
	return Validate(body, number[len(number)-1])
}
