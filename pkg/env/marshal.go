package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const redacted = "********"

var durationType = reflect.TypeOf(time.Duration(0))

type options struct {
	redact     bool
	withZeroes bool
}

type Option func(*options)

// WithRedactedSecrets masks values whose key names a key, token or secret.
func WithRedactedSecrets() Option {
	return func(o *options) { o.redact = true }
}

// WithZeroValues keeps fields that hold their zero value.
func WithZeroValues() Option {
	return func(o *options) { o.withZeroes = true }
}

// MarshalEnv renders the env-tagged fields of the struct pointed to by c as
// KEY=value lines. Zero values are skipped unless WithZeroValues is given.
func MarshalEnv(c any, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return "", fmt.Errorf("marshal env: want pointer to struct, got %T", c)
	}
	v = v.Elem()
	t := v.Type()

	var lines []string
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("env")
		if tag == "" || !field.IsExported() {
			continue
		}

		key := strings.Split(tag, ",")[0]
		if key == "" {
			continue
		}

		val := v.Field(i)
		if !o.withZeroes && val.IsZero() {
			continue
		}

		sep := field.Tag.Get("envSeparator")
		if sep == "" {
			sep = ","
		}
		str := formatValue(val, sep)
		if o.redact && isSecret(key) && str != "" {
			str = redacted
		}
		lines = append(lines, fmt.Sprintf("%s=%s", key, quote(str)))
	}

	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func isSecret(key string) bool {
	k := strings.ToUpper(key)
	return strings.HasSuffix(k, "_KEY") || strings.Contains(k, "TOKEN") || strings.Contains(k, "SECRET")
}

// quote wraps values godotenv would otherwise misread.
func quote(s string) string {
	if s == "" || !strings.ContainsAny(s, " #\"'\t") {
		return s
	}
	return strconv.Quote(s)
}

func formatValue(v reflect.Value, sep string) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice, reflect.Array:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i), sep)
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
