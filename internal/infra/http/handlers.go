package http

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/spreadsheet"
)

const maxUploadBytes = 10 << 20

/* ---- auth ---- */

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	// пробелы по краям не считаются содержимым для required
	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = strings.TrimSpace(req.Email)
	if err := checkStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.accounts.Register(r.Context(), req.Nome, req.Email, req.Senha)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSession(s))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.accounts.Login(r.Context(), req.Email, req.Senha)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(s))
}

/* ---- materials ---- */

func (h *handlers) listMaterials(w http.ResponseWriter, r *http.Request) {
	list, err := h.materials.List(r.Context(), ownerID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]materialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMaterial(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.materials.Get(r.Context(), ownerID(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMaterial(*m))
}

func (h *handlers) createMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.materials.Create(r.Context(), ownerID(r.Context()), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMaterial(*m))
}

func (h *handlers) updateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req materialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.materials.Update(r.Context(), ownerID(r.Context()), id, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMaterial(*m))
}

func (h *handlers) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.materials.Delete(r.Context(), ownerID(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Material excluído com sucesso")
}

// pathID разбирает {id}; невозможный id отдаём как "не найдено".
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apiError{http.StatusNotFound, "Material não encontrado"}
	}
	return id, nil
}

/* ---- stock ---- */

type batchResponse struct {
	Mensagem  string `json:"mensagem"`
	Registros int    `json:"registros"`
}

func (h *handlers) recordEntries(w http.ResponseWriter, r *http.Request) {
	reqs, err := decodeBatch[entryRequest](w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkLines(reqs); err != nil {
		h.fail(w, r, err)
		return
	}
	lines := make([]inventory.EntryLine, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, inventory.EntryLine{MaterialID: l.MaterialID, Quantity: l.Quantidade, UnitPrice: l.Preco})
	}
	entries, err := h.ledger.RecordEntries(r.Context(), ownerID(r.Context()), lines)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{"Entradas registradas com sucesso", len(entries)})
}

func (h *handlers) recordExits(w http.ResponseWriter, r *http.Request) {
	reqs, err := decodeBatch[exitRequest](w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkLines(reqs); err != nil {
		h.fail(w, r, err)
		return
	}
	lines := make([]inventory.ExitLine, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, inventory.ExitLine{MaterialID: l.MaterialID, Quantity: l.Quantidade})
	}
	exits, err := h.ledger.RecordExits(r.Context(), ownerID(r.Context()), lines)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{"Saídas registradas com sucesso", len(exits)})
}

func (h *handlers) importEntries(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, apiError{http.StatusBadRequest, "Arquivo não enviado (campo file)"})
		return
	}
	defer func() { _ = file.Close() }()

	entries, err := spreadsheet.ImportEntries(r.Context(), h.ledger, ownerID(r.Context()), file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{"Entradas importadas com sucesso", len(entries)})
}

func (h *handlers) balances(w http.ResponseWriter, r *http.Request) {
	positions, err := h.ledger.Balances(r.Context(), ownerID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPosition(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) exportBalances(w http.ResponseWriter, r *http.Request) {
	positions, err := h.ledger.Balances(r.Context(), ownerID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	buf := &bytes.Buffer{}
	if err := spreadsheet.WriteBalances(buf, positions); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="saldo.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *handlers) movements(w http.ResponseWriter, r *http.Request) {
	var f inventory.MovementFilter
	q := r.URL.Query()
	if s := q.Get("materialId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			h.fail(w, r, apiError{http.StatusUnprocessableEntity, "campo materialId inválido"})
			return
		}
		f.MaterialID = id
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.fail(w, r, apiError{http.StatusUnprocessableEntity, "campo limit inválido"})
			return
		}
		f.Limit = n
	}
	list, err := h.ledger.Movements(r.Context(), ownerID(r.Context()), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]movementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovement(m))
	}
	writeJSON(w, http.StatusOK, out)
}
