package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for error codes.
// data provides the parameters recorded on the error (for example, "name",
// "min" or "expected") which templates reference as {key}.
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalog = map[string]map[string]string{
	"en": {
		"required":                    "is required",
		"not_allowed":                 "{name} is not allowed key",
		"key_shadowed":                "{name} key was shadowed",
		"not_a_mapping":               "value is not a mapping",
		"some_elements_did_not_match": "some elements did not match",
		"no_alternative_matched":      "no alternative matched",
		"parse_error":                 "parse error: {reason}",
		"invalid":                     "invalid value",
		"invalid_type":                "value is not {expected}",
		"not_convertible":             "value can't be converted to {target}",
		"empty_string":                "blank value is not allowed",
		"too_short":                   "{subject} is shorter than {min}",
		"too_long":                    "{subject} is longer than {max}",
		"too_small":                   "value should be {cmp} {limit}",
		"too_big":                     "value should be {cmp} {limit}",
		"wrong_length":                "value must contain {n} items",
		"pattern":                     "does not match pattern {pattern}",
		"invalid_enum":                "value doesn't match any variant",
		"is_not_exactly":              "value is not exactly '{expected}'",
		"is_not_null":                 "value should be null",
		"invalid_format":              "value is not a valid {format}",
		"not_equal":                   "must be equal to {name}",
		"xor_conflict":                "correct only if {other} is not defined",
		"xor_missing":                 "is required if {other} is not defined",
	},
	"ja": {
		"required":                    "必須です",
		"not_allowed":                 "{name} は許可されていないキーです",
		"key_shadowed":                "{name} キーが上書きされています",
		"not_a_mapping":               "マッピングではありません",
		"some_elements_did_not_match": "一部の要素が一致しません",
		"no_alternative_matched":      "どの候補にも一致しません",
		"parse_error":                 "解析エラー: {reason}",
		"invalid_type":                "型が不正です",
		"empty_string":                "空文字は許可されていません",
		"too_short":                   "短すぎます",
		"too_long":                    "長すぎます",
		"too_small":                   "小さすぎます",
		"too_big":                     "大きすぎます",
		"invalid_enum":                "候補に一致しません",
		"not_equal":                   "{name} と一致しません",
	},
}

// dictTranslator is the built-in dictionary-based Translator. Codes missing
// from a non-English catalogue fall back to English, unknown codes to the
// code itself.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tpl, ok := catalog[t.lang][code]
	if !ok {
		tpl, ok = catalog["en"][code]
	}
	if !ok {
		return code
	}
	return Render(tpl, data)
}

// Render substitutes {key} placeholders in tpl with values from data.
// Placeholders without a value are left as-is.
func Render(tpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tpl, "{") {
		return tpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

var (
	trMu              sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	trMu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	trMu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	trMu.Lock()
	currentTranslator = tr
	trMu.Unlock()
}

// Dictionary returns the built-in Translator for lang without installing it.
func Dictionary(lang string) Translator { return dictTranslator{lang: lang} }

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	trMu.RLock()
	tr := currentTranslator
	trMu.RUnlock()
	return tr.Message(code, data)
}
