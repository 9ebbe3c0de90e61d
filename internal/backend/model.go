package backend

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ListParams filters the paginated listing endpoints. Page starts at 1.
type ListParams struct {
	Page int    `json:"page"`
	Name string `json:"nome,omitempty"`
}

type Pagination struct {
	TotalItems  int `json:"totalItens"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
	Phone string `json:"telefone"`
	CPF   string `json:"cpf"`
}

type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"nome"`
	Email  string `json:"email"`
	Phone  string `json:"telefone"`
	CPF    string `json:"cpf"`
	Status string `json:"status"`
	Role   string `json:"cargo"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"nome"`
	Description string          `json:"descricao"`
	Price       decimal.Decimal `json:"preco"`
	Available   int             `json:"quantidadeDisponivel"`
}

type CustomerPage struct {
	Pagination
	Customers []Customer `json:"clientesList"`
}

type EmployeePage struct {
	Pagination
	Employees []Employee `json:"funcionariosList"`
}

type ProductPage struct {
	Pagination
	Products []Product `json:"produtosList"`
}

type SaleItemRequest struct {
	ProductID string `json:"produtoId"`
	Quantity  int    `json:"unidadesProduto"`
}

// CreateSaleRequest is the body of /cadastrar_venda. Unit prices are never
// sent: the backend prices the items and deducts stock itself.
type CreateSaleRequest struct {
	CustomerID    string            `json:"clienteId"`
	EmployeeID    string            `json:"funcionarioId"`
	PaymentMethod string            `json:"tipoPagamento"`
	Discount      json.Number       `json:"desconto"`
	Items         []SaleItemRequest `json:"itens"`
}

type SaleItem struct {
	ID        string          `json:"id"`
	SaleID    string          `json:"carrinhoId"`
	ProductID string          `json:"produtoId"`
	Quantity  int             `json:"unidadesProduto"`
	Total     decimal.Decimal `json:"totalItemCarrinho"`
}

// Sale is a persisted cart as returned by the backend. The list and detail
// endpoints differ only in the casing of the items key, which encoding/json
// matches case-insensitively.
type Sale struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"clienteId"`
	EmployeeID    string          `json:"funcionarioId"`
	TotalValue    decimal.Decimal `json:"valorTotal"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"desconto"`
	PaymentMethod string          `json:"tipoPagamento"`
	CreatedAt     time.Time       `json:"dateCreated"`
	UpdatedAt     time.Time       `json:"dateUpdated"`
	Items         []SaleItem      `json:"itemCarrinho"`
	Customer      *Customer       `json:"Clientes,omitempty"`
	Employee      *Employee       `json:"Funcionario,omitempty"`
}

type SalesParams struct {
	Page       int    `json:"page"`
	CustomerID string `json:"clienteId,omitempty"`
	EmployeeID string `json:"funcionarioId,omitempty"`
}

type SalePage struct {
	Pagination
	Sales []Sale `json:"carrinhosList"`
}

type saleEnvelope struct {
	Sale Sale `json:"carrinho"`
}

type deleteSaleRequest struct {
	SaleID string `json:"id_carrinho"`
}
