// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-manager/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// FromError сопоставляет доменную ошибку с HTTP-статусом и текстом ответа.
// Для неизвестных ошибок возвращается 500 и сообщение fallback.
func FromError(err error, fallback string) (int, ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrClientNotFound),
		errors.Is(err, models.ErrPlanNotFound),
		errors.Is(err, models.ErrMembershipNotFound):
		return http.StatusNotFound, Error(rootMessage(err))
	case errors.Is(err, models.ErrDuplicateIDCard):
		return http.StatusConflict, Error(models.ErrDuplicateIDCard.Error())
	case errors.Is(err, models.ErrNoPlans),
		errors.Is(err, models.ErrPlanRequired),
		errors.Is(err, models.ErrNotEligible),
		errors.Is(err, models.ErrInvalidRole),
		errors.Is(err, models.ErrInvalidMonths),
		errors.Is(err, models.ErrInvalidPeriod):
		return http.StatusUnprocessableEntity, Error(rootMessage(err))
	case errors.Is(err, models.ErrImage):
		return http.StatusUnprocessableEntity, Error(models.ErrImage.Error())
	case errors.Is(err, models.ErrPhotoIO):
		return http.StatusInternalServerError, Error(models.ErrPhotoIO.Error())
	}
	return http.StatusInternalServerError, Error(fallback)
}

// rootMessage возвращает текст доменной ошибки без префиксов операций.
func rootMessage(err error) string {
	for _, target := range []error{
		models.ErrClientNotFound, models.ErrPlanNotFound, models.ErrMembershipNotFound,
		models.ErrNoPlans, models.ErrPlanRequired, models.ErrNotEligible, models.ErrInvalidRole,
		models.ErrInvalidMonths, models.ErrInvalidPeriod,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "gt", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be %s %s", err.Field(), comparison(err.ActualTag()), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

func comparison(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}
