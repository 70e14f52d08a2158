package models

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	pricePrefix = "Rs."
	priceSuffix = "/month"
)

var ErrInvalidPrice = errors.New("invalid price")

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice turns a form amount ("15000", "15,000" or "Rs. 15,000/month")
// into the display string "Rs. 15,000/month".
func FormatPrice(raw string) (string, error) {
	digits := RawPrice(raw)
	digits = strings.ReplaceAll(digits, ",", "")
	digits = strings.ReplaceAll(digits, " ", "")
	if digits == "" {
		return "", ErrInvalidPrice
	}
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || amount <= 0 {
		return "", ErrInvalidPrice
	}
	return pricePrinter.Sprintf("%s %d%s", pricePrefix, amount, priceSuffix), nil
}

// MustFormatPrice is FormatPrice for already validated input.
func MustFormatPrice(raw string) string {
	p, err := FormatPrice(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// RawPrice strips the currency prefix and period suffix from a display price.
func RawPrice(display string) string {
	s := strings.TrimSpace(display)
	s = strings.TrimPrefix(s, pricePrefix)
	s = strings.TrimSuffix(s, priceSuffix)
	return strings.TrimSpace(s)
}
