package service

import (
	"fmt"
	"maps"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sun-sentiment/article-importer/internal/dialect"
)

const (
	// DateLayout — формат articleDate по умолчанию.
	DateLayout = "2006-01-02"
	// TimestampLayout — формат crawlTimestamp по умолчанию (RFC 3339,
	// дробные секунды допускаются при разборе).
	TimestampLayout = "2006-01-02T15:04:05Z07:00"
)

// Schema — правила проверки канонических полей в синтаксисе тегов validator.
// Пустое правило — поле не проверяется.
type Schema map[dialect.Field]string

// DefaultSchema — схема записи статьи.
var DefaultSchema = Schema{
	dialect.FieldURL:            "required,absurl",
	dialect.FieldTitle:          "required",
	dialect.FieldContent:        "required,min=1",
	dialect.FieldAuthor:         "",
	dialect.FieldArticleDate:    "required,datetime=" + DateLayout,
	dialect.FieldCrawlTimestamp: "omitempty,datetime=" + TimestampLayout,
}

// requiredFields обязательны после валидации при любых переопределениях правил.
var requiredFields = []dialect.Field{
	dialect.FieldURL,
	dialect.FieldTitle,
	dialect.FieldContent,
	dialect.FieldArticleDate,
}

// SchemaFor накладывает правила диалекта на DefaultSchema и проверяет,
// что все теги известны валидатору.
func SchemaFor(d dialect.Dialect) (Schema, error) {
	const op = "service/schema/SchemaFor"

	s := maps.Clone(DefaultSchema)
	maps.Copy(s, d.Rules)

	for _, f := range dialect.CanonicalFields {
		if err := checkRule(s[f]); err != nil {
			return nil, fmt.Errorf("%s: %w: dialect %s: rule for %s: %v", op, ErrConfiguration, d.Name, f, err)
		}
	}

	return s, nil
}

// checkRule прогоняет тег на пустом значении: validator паникует
// на неизвестных тегах и битых параметрах.
func checkRule(rule string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bad rule %q: %v", rule, r)
		}
	}()

	_ = validate.Var("", rule)

	return nil
}

// layout достаёт параметр datetime= из правила или возвращает def.
func layout(rule, def string) string {
	for _, tag := range strings.Split(rule, ",") {
		if p, ok := strings.CutPrefix(tag, "datetime="); ok && p != "" {
			return p
		}
	}

	return def
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("absurl", isAbsoluteURL); err != nil {
		panic(err)
	}

	return v
}

func isAbsoluteURL(fl validator.FieldLevel) bool {
	return absoluteURL(fl.Field().String())
}

// absoluteURL — ссылка со схемой и хостом.
func absoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}
