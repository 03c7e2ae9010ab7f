package handler

import (
	"warkop-pos/internal/repository"
	"warkop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	products service.ProductService
	tables   service.TableService
}

func NewProductHandler(products service.ProductService, tables service.TableService) *ProductHandler {
	return &ProductHandler{products: products, tables: tables}
}

// GET /products?category=&search=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	catalog, err := h.products.List(c.UserContext(), repository.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(catalog)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.products.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return badID(c)
	}

	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.products.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return badID(c)
	}
	if err := h.products.Delete(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GET /tables
func (h *ProductHandler) GetTables(c *fiber.Ctx) error {
	tables, err := h.tables.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tables)
}

// POST /tables
func (h *ProductHandler) CreateTable(c *fiber.Ctx) error {
	var req service.TableInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	table, err := h.tables.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Table created", "data": table})
}
