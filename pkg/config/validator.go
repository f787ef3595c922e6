package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	// Field is the dot-notation path of the setting (collections.0.path).
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid setting of a configuration.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid configuration (%d error(s)):", len(ve))
	for _, e := range ve {
		sb.WriteString("\n  " + e.Error())
	}
	return sb.String()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("listen_addr", validateListenAddr); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateListenAddr accepts host:port with a port in 0-65535; the host may
// be empty.
func validateListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "http_url":
		return "must be an absolute http(s) URL"
	case "listen_addr":
		return "must be in format 'host:port'"
	case "startswith":
		return fmt.Sprintf("must start with %q", e.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", e.Param())
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// Validate checks every setting and returns ValidationErrors listing all
// problems found.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fieldPath(fe.Namespace()),
				Message: validationMessage(fe),
			})
		}
	}

	errs = append(errs, c.validateCollections()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateCollections checks constraints spanning collections: unique names,
// and unique paths per server.
func (c *Config) validateCollections() ValidationErrors {
	var errs ValidationErrors
	names := make(map[string]bool)
	paths := make(map[string]string)

	for i, coll := range c.Collections {
		if coll.Name != "" {
			if names[coll.Name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("collections.%d.name", i),
					Message: fmt.Sprintf("duplicate collection name: %s", coll.Name),
				})
			}
			names[coll.Name] = true
		}

		for j, p := range append([]string{coll.Path}, coll.Aliases...) {
			if p == "" {
				continue
			}
			key := coll.Server + " " + p
			if owner, ok := paths[key]; ok {
				field := fmt.Sprintf("collections.%d.path", i)
				if j > 0 {
					field = fmt.Sprintf("collections.%d.aliases.%d", i, j-1)
				}
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("path %s already serves collection %s on the %s server", p, owner, coll.Server),
				})
				continue
			}
			paths[key] = coll.Name
		}
	}
	return errs
}

// fieldPath turns a validator namespace (Config.collections[0].path) into
// collections.0.path.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}
