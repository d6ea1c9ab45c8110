package apierror

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"validity-service/internal/models"
)

const (
	keyServerUnreachable  = "error.server_unreachable"
	keyUnexpectedResponse = "error.unexpected_response %d"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var translations = map[language.Tag]map[string]string{
	language.English: {
		codeKey(models.ErrCodeInvalidToken):    "Your session has expired, please sign in again",
		codeKey(models.ErrCodeUserNotFound):    "User not found",
		codeKey(models.ErrCodeProductNotFound): "Product not found",
		codeKey(models.ErrCodeBatchNotFound):   "Batch not found",
		codeKey(models.ErrCodeTeamNotFound):    "Team not found",
		codeKey(models.ErrCodeNotTeamMember):   "You are no longer a member of this team",
		codeKey(models.ErrCodeDeviceChanged):   "Your account was signed in on another device",
		keyServerUnreachable:                   "Could not reach the server, check your connection",
		keyUnexpectedResponse:                  "Unexpected server response (HTTP %d)",
	},
	language.BrazilianPortuguese: {
		codeKey(models.ErrCodeInvalidToken):    "Sua sessão expirou, faça login novamente",
		codeKey(models.ErrCodeUserNotFound):    "Usuário não encontrado",
		codeKey(models.ErrCodeProductNotFound): "Produto não encontrado",
		codeKey(models.ErrCodeBatchNotFound):   "Lote não encontrado",
		codeKey(models.ErrCodeTeamNotFound):    "Time não encontrado",
		codeKey(models.ErrCodeNotTeamMember):   "Você não faz mais parte deste time",
		codeKey(models.ErrCodeDeviceChanged):   "Sua conta foi conectada em outro dispositivo",
		keyServerUnreachable:                   "Não foi possível conectar ao servidor, verifique sua conexão",
		keyUnexpectedResponse:                  "Resposta inesperada do servidor (HTTP %d)",
	},
}

func codeKey(code int) string {
	return fmt.Sprintf("error.code.%d", code)
}

// Messages выдаёт локализованные тексты ошибок
type Messages struct {
	tag     language.Tag
	printer *message.Printer
	known   map[string]string
}

// NewMessages подбирает ближайший поддерживаемый язык для locale (например "pt-BR").
// Неизвестная или пустая локаль даёт английский.
func NewMessages(locale string) (*Messages, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, msg := range entries {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("failed to register message %q: %w", key, err)
			}
		}
	}

	tag := language.English
	if locale != "" {
		requested, err := language.Parse(locale)
		if err == nil {
			_, idx, _ := language.NewMatcher(supportedLanguages).Match(requested)
			tag = supportedLanguages[idx]
		}
	}

	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
		known:   translations[tag],
	}, nil
}

// Language возвращает выбранный язык
func (m *Messages) Language() language.Tag {
	return m.tag
}

// ForCode возвращает текст для кода ошибки сервера, если он известен
func (m *Messages) ForCode(code int) (string, bool) {
	key := codeKey(code)
	if _, ok := m.known[key]; !ok {
		return "", false
	}
	return m.printer.Sprintf(key), true
}

// ServerUnreachable возвращает текст для запроса, оставшегося без ответа
func (m *Messages) ServerUnreachable() string {
	return m.printer.Sprintf(keyServerUnreachable)
}

// UnexpectedResponse возвращает текст для ответа без разбираемого тела ошибки
func (m *Messages) UnexpectedResponse(status int) string {
	return m.printer.Sprintf(keyUnexpectedResponse, status)
}
