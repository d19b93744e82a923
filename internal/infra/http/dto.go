package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/domain/materials"
	"github.com/Spok95/recycle-stock/internal/domain/users"
)

type registerRequest struct {
	Nome  string `json:"nome" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email,max=254"`
	Senha string `json:"senha" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Usuario userResponse `json:"usuario"`
	Token   string       `json:"token"`
}

func toSession(s *users.Session) sessionResponse {
	return sessionResponse{
		Usuario: userResponse{ID: s.User.ID, Nome: s.User.Name, Email: s.User.Email},
		Token:   s.Token,
	}
}

type materialRequest struct {
	Nome      string  `json:"nome" validate:"required,max=120"`
	Descricao *string `json:"descricao" validate:"omitempty,max=500"`
	Unidade   string  `json:"unidade" validate:"required,max=20"`
}

func (m materialRequest) input() materials.Input {
	return materials.Input{Name: m.Nome, Description: m.Descricao, Unit: m.Unidade}
}

type materialResponse struct {
	ID        int64   `json:"id"`
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
	Unidade   string  `json:"unidade"`
}

func toMaterial(m materials.Material) materialResponse {
	return materialResponse{ID: m.ID, Nome: m.Name, Descricao: m.Description, Unidade: m.Unit}
}

type entryRequest struct {
	MaterialID int64           `json:"materialId" validate:"gt=0"`
	Quantidade decimal.Decimal `json:"quantidade" validate:"gt=0"`
	Preco      decimal.Decimal `json:"preco" validate:"gt=0"`
}

type exitRequest struct {
	MaterialID int64           `json:"materialId" validate:"gt=0"`
	Quantidade decimal.Decimal `json:"quantidade" validate:"gt=0"`
}

type positionResponse struct {
	MaterialID int64   `json:"materialId"`
	Material   string  `json:"material"`
	Quantidade float64 `json:"quantidade"`
	Unidade    string  `json:"unidade"`
	PrecoMedio float64 `json:"precoMedio"`
	ValorTotal float64 `json:"valorTotal"`
}

func toPosition(p inventory.Position) positionResponse {
	return positionResponse{
		MaterialID: p.MaterialID,
		Material:   p.Material,
		Quantidade: p.Quantity.InexactFloat64(),
		Unidade:    p.Unit,
		PrecoMedio: p.AverageCost.InexactFloat64(),
		ValorTotal: p.TotalValue.InexactFloat64(),
	}
}

type movementResponse struct {
	ID         int64     `json:"id"`
	Tipo       string    `json:"tipo"`
	MaterialID int64     `json:"materialId"`
	Material   string    `json:"material"`
	Unidade    string    `json:"unidade"`
	Quantidade float64   `json:"quantidade"`
	Preco      *float64  `json:"preco,omitempty"`
	Data       time.Time `json:"data"`
}

func toMovement(m inventory.Movement) movementResponse {
	out := movementResponse{
		ID:         m.ID,
		Tipo:       "saida",
		MaterialID: m.MaterialID,
		Material:   m.Material,
		Unidade:    m.Unit,
		Quantidade: m.Quantity.InexactFloat64(),
		Data:       m.CreatedAt,
	}
	if m.Kind == inventory.KindEntry {
		out.Tipo = "entrada"
		p := m.UnitPrice.InexactFloat64()
		out.Preco = &p
	}
	return out
}
