package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Issue is one per-field validation failure as returned to clients.
type Issue struct {
	Campo   string `json:"campo"`
	Mensaje string `json:"mensaje"`
}

type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Campo+": "+issue.Mensaje)
	}
	return "datos inválidos: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-issue validation error for checks done outside
// struct tags (file fields, path params).
func NewValidationError(campo, mensaje string) error {
	return &ValidationError{Issues: []Issue{{Campo: campo, Mensaje: mensaje}}}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return ""
		})
		// decimals are validated through their float value so gt/gte/lte tags apply
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		if err := v.RegisterValidation("telefono", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			return ValidatePhoneNumber(s, PhoneRegion()) == nil
		}); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// ValidateStruct trims every string field of s (which must be a pointer) and checks the
// `validate` tags. Failures come back as *ValidationError using the `msg` tag of the
// offending field when present.
func ValidateStruct(s any) error {
	TrimStrings(s)
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	root := reflect.TypeOf(s)
	for root.Kind() == reflect.Ptr {
		root = root.Elem()
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Campo:   fieldPath(fe.Namespace()),
			Mensaje: messageFor(root, fe),
		})
	}
	return &ValidationError{Issues: issues}
}

// ValidateVar checks a single value against tag, reporting failures under campo.
func ValidateVar(value any, tag, campo, mensaje string) error {
	if err := getValidator().Var(value, tag); err != nil {
		return NewValidationError(campo, mensaje)
	}
	return nil
}

func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func messageFor(root reflect.Type, fe validator.FieldError) string {
	if field, ok := lookupField(root, fe.StructNamespace()); ok {
		if msg := field.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	switch fe.Tag() {
	case "required":
		return "El campo es requerido"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser menor o igual a %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Debe ser mayor a %s", fe.Param())
	case "email":
		return "Correo electrónico inválido"
	case "url":
		return "URL inválida"
	case "telefono":
		return "Número de teléfono inválido"
	case "oneof":
		return "Valor no permitido"
	}
	return "Valor inválido"
}

// lookupField walks a struct namespace such as "input.Viviendas[2].Dimension".
func lookupField(root reflect.Type, structNamespace string) (reflect.StructField, bool) {
	segments := strings.Split(structNamespace, ".")
	if len(segments) < 2 {
		return reflect.StructField{}, false
	}
	current := root
	var field reflect.StructField
	for _, segment := range segments[1:] {
		if i := strings.Index(segment, "["); i >= 0 {
			segment = segment[:i]
		}
		for current.Kind() == reflect.Ptr || current.Kind() == reflect.Slice || current.Kind() == reflect.Array {
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}
		f, ok := current.FieldByName(segment)
		if !ok {
			return reflect.StructField{}, false
		}
		field = f
		current = f.Type
	}
	return field, true
}

// TrimStrings trims surrounding whitespace of every settable string (and *string) field,
// recursing into nested structs and slices.
func TrimStrings(v any) {
	trimValue(reflect.ValueOf(v))
}

func trimValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			trimValue(v.Elem())
		}
	case reflect.Struct:
		if v.Type() == reflect.TypeOf(decimal.Decimal{}) {
			return
		}
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				trimValue(v.Field(i))
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			trimValue(v.Index(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}
