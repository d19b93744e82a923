package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/domain/materials"
	"github.com/Spok95/recycle-stock/internal/domain/users"
	"github.com/Spok95/recycle-stock/internal/spreadsheet"
)

const maxBodyBytes = 1 << 20

// apiError - ошибка, которая уже знает свой ответ.
type apiError struct {
	status int
	msg    string
}

func (e apiError) Error() string { return e.msg }

var errBadJSON = apiError{http.StatusBadRequest, "JSON inválido"}

const internalErrorBody = `{"erro":"Erro interno"}` + "\n"

// writeJSON сначала кодирует в буфер: статус уходит только вместе с телом.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(internalErrorBody)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"erro": msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"mensagem": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return nil
}

// decodeBatch принимает и один JSON-объект, и массив объектов.
func decodeBatch[T any](w http.ResponseWriter, r *http.Request) ([]T, error) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errBadJSON
		}
		return items, nil
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, errBadJSON
	}
	return []T{item}, nil
}

// fail переводит ошибки сервисов в ответы. Всё неизвестное логируем и
// отдаём как 500 без подробностей.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		apiErr   apiError
		lineErr  inventory.ValidationError
		stockErr inventory.StockError
		rowErr   spreadsheet.RowError
	)
	switch {
	case errors.As(err, &apiErr):
		writeError(w, apiErr.status, apiErr.msg)
	case errors.As(err, &lineErr):
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("linha %d: campo %s inválido", lineErr.Line, lineErr.Field))
	case errors.Is(err, inventory.ErrEmptyBatch):
		writeError(w, http.StatusUnprocessableEntity, "Nenhum item informado")
	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, fmt.Sprintf(
			"Quantidade insuficiente em estoque: %s (disponível %s, solicitado %s)",
			stockErr.Material, stockErr.Available, stockErr.Requested))
	case errors.Is(err, inventory.ErrUnknownMaterial), errors.Is(err, materials.ErrNotFound):
		writeError(w, http.StatusNotFound, "Material não encontrado")
	case errors.Is(err, materials.ErrNameTaken):
		writeError(w, http.StatusConflict, "Material já existe")
	case errors.Is(err, materials.ErrInStock):
		writeError(w, http.StatusConflict, "Material possui saldo em estoque")
	case errors.Is(err, materials.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "Dados do material inválidos")
	case errors.Is(err, users.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Usuário já existe")
	case errors.Is(err, users.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "Dados do usuário inválidos")
	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Credenciais inválidas")
	case errors.Is(err, spreadsheet.ErrUnreadable):
		writeError(w, http.StatusBadRequest, "Arquivo xlsx inválido")
	case errors.Is(err, spreadsheet.ErrNoRows):
		writeError(w, http.StatusUnprocessableEntity, "Planilha sem linhas de entrada")
	case errors.As(err, &rowErr):
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("linha %d da planilha: %s inválido", rowErr.Row, rowErr.Column))
	default:
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"owner_id", ownerID(r.Context()),
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, "Erro interno")
	}
}

type handlers struct {
	log       *slog.Logger
	accounts  AccountService
	materials MaterialService
	ledger    LedgerService
}
