package stdlib

import (
	"github.com/iancoleman/strcase"

	"naux/internal/environment"
	"naux/internal/value"
)

// to_snake_case/to_camel_case expose iancoleman/strcase to scripts,
// exercising the same naming-convention conversions kanso-lang-kanso
// uses internally for its own identifier handling.
func init() {
	environment.Register("to_snake_case", toSnakeCase)
	environment.Register("to_camel_case", toCamelCase)
}

func toSnakeCase(args []value.Value) (value.Value, error) {
	s, ok := asText(firstArg(args))
	if !ok {
		return value.Nil, argErr("to_snake_case(text)")
	}
	return value.NewTextValue(strcase.ToSnake(s)), nil
}

func toCamelCase(args []value.Value) (value.Value, error) {
	s, ok := asText(firstArg(args))
	if !ok {
		return value.Nil, argErr("to_camel_case(text)")
	}
	return value.NewTextValue(strcase.ToCamel(s)), nil
}

func firstArg(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Nil
	}
	return args[0]
}
