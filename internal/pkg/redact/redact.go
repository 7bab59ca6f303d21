// redact маскирует чувствительные данные перед записью в лог:
// e-mail пользователя и заголовок Authorization с bearer-токеном.
package redact

import "strings"

// Email маскирует e-mail для логирования.
//
// Правила:
//   - Строка должна содержать РОВНО один символ '@', иначе возвращается "***";
//   - Локальная часть (до '@') заменяется на первые два символа (по рунам) + "***";
//   - Если длина локальной части ≤ 2 символов, возвращается "***@<domain>";
//   - Доменная часть возвращается без изменений (сохраняется регистр/содержимое).
//
// Примеры:
//
//	"foobar@example.com"   -> "fo***@example.com"
//	"ab@ex.com"            -> "***@ex.com"
//	"user@"                -> "us***@"
//	"no-at"                -> "***"
//	"abc.def+tag@EXAMPLE"  -> "ab***@EXAMPLE"
func Email(s string) string {
	// ровно один '@', иначе считаем e-mail невалидным и редактируем полностью.
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Authorization оставляет от заголовка Authorization только схему.
//
//	""                 -> ""
//	"Bearer eyJhbGci"  -> "Bearer [REDACTED]"
//	"garbage"          -> "[REDACTED]"
func Authorization(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}

	scheme, _, found := strings.Cut(h, " ")
	if !found {
		return "[REDACTED]"
	}

	return scheme + " [REDACTED]"
}
