package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// PhoneRegion is the default region numbers without a country prefix are parsed in.
func PhoneRegion() string {
	if v := strings.TrimSpace(os.Getenv("PHONE_REGION")); v != "" {
		return strings.ToUpper(v)
	}
	return "VE"
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}
	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}

// FormatPhoneE164 normalizes a valid number, returning the input unchanged otherwise.
func FormatPhoneE164(phoneNumber string) string {
	p, err := libphonenumber.Parse(phoneNumber, PhoneRegion())
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return phoneNumber
	}
	return libphonenumber.Format(p, libphonenumber.E164)
}
