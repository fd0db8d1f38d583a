// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = "fr"
	}

	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")

		if lang != "" {
			// Handle cases like "fr-MG,fr;q=0.9,en;q=0.8"
			langs := strings.Split(lang, ",")
			if len(langs) > 0 {
				firstLang := strings.TrimSpace(strings.Split(langs[0], ";")[0])
				switch {
				case strings.HasPrefix(firstLang, "fr"):
					lang = "fr"
				case strings.HasPrefix(firstLang, "mg"):
					lang = "fr"
				case strings.HasPrefix(firstLang, "en"):
					lang = "en"
				default:
					lang = defaultLang
				}
			}
		} else {
			lang = defaultLang
		}

		c.Set("lang", lang)
		c.Next()
	}
}
