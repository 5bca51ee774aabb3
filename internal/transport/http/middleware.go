package http

import "net/http"

// Заголовки идентификации. Аутентификацию выполняет внешний шлюз,
// сервис доверяет его заголовкам.
const (
	headerUserID         = "X-User-ID"
	headerUserRole       = "X-User-Role"
	headerIdempotencyKey = "Idempotency-Key"

	roleAdmin = "admin"
)

// userID извлекает идентификатор пользователя; пустая строка означает
// анонимный запрос и превращается в NotAuthenticated на уровне сервисов.
func userID(r *http.Request) string {
	return r.Header.Get(headerUserID)
}

// requireAdmin пропускает только запросы с ролью admin.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerUserRole) != roleAdmin {
			writeJSON(w, http.StatusForbidden, errorBody{
				Code:    "forbidden",
				Message: "admin role required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
