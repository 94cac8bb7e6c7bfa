package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// structValidate checks the tagged numeric rules on the global settings.
var structValidate *validator.Validate

func init() {
	structValidate = validator.New()
	structValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func (c *checker) checkDimensions() {
	c.structFindings(c.cfg.GlobalSettings.Dimensions, KindInvalidDimension, "globalSettings.dimensions")
	c.structFindings(c.cfg.GlobalSettings.Rules, KindInvalidDimension, "globalSettings.rules")
	c.structFindings(c.cfg.GlobalConstraints, KindInvalidConstraint, "globalConstraints")
}

func (c *checker) structFindings(v any, kind Kind, prefix string) {
	err := structValidate.Struct(v)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		c.fail(Finding{Kind: kind, Message: err.Error(), Field: prefix})
		return
	}
	for _, fe := range verrs {
		field := prefix + "." + trimRoot(fe.Namespace())
		c.fail(Finding{
			Kind:    kind,
			Message: fmt.Sprintf("%s %s", field, describe(fe)),
			Field:   field,
		})
	}
}

// trimRoot drops the leading struct type name of a validator namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "gtfield":
		return fmt.Sprintf("must exceed %s, got %v", lowerFirst(fe.Param()), fe.Value())
	case "gtefield":
		return fmt.Sprintf("must be at least %s, got %v", lowerFirst(fe.Param()), fe.Value())
	case "ltefield":
		return fmt.Sprintf("must not exceed %s, got %v", lowerFirst(fe.Param()), fe.Value())
	}
	return fmt.Sprintf("fails rule %q", fe.Tag())
}
