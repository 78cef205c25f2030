package controllers

import (
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/ctx"
)

type ProductController struct {
	Base
	products *services.ProductService
}

func NewProductController(products *services.ProductService, base Base) *ProductController {
	return &ProductController{Base: base, products: products}
}

func (pc *ProductController) Index(c *ctx.Context) {
	page, err := pc.products.List(c.Context(), services.ProductQuery{
		ListQuery: listQuery(c),
		Category:  c.Query("category"),
	})
	if err != nil {
		pc.Fail(c, err)
		return
	}
	c.OK(page)
}

func (pc *ProductController) Show(c *ctx.Context) {
	p, err := pc.products.Get(c.Context(), c.Param("id"))
	if err != nil {
		pc.Fail(c, err)
		return
	}
	c.OK(p)
}

func (pc *ProductController) Store(c *ctx.Context) {
	var in services.CreateProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.products.Create(c.Context(), actor(c), in)
	if err != nil {
		pc.Fail(c, err)
		return
	}
	c.Created(p)
}

func (pc *ProductController) Update(c *ctx.Context) {
	var in services.UpdateProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.products.Update(c.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		pc.Fail(c, err)
		return
	}
	c.OK(p)
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.products.Delete(c.Context(), actor(c), c.Param("id")); err != nil {
		pc.Fail(c, err)
		return
	}
	c.Message("Product deleted successfully")
}

// UploadImage POST /api/products/{id}/image (multipart field "image")
func (pc *ProductController) UploadImage(c *ctx.Context) {
	up, closer, ok := pc.upload(c, "image")
	if !ok {
		return
	}
	defer closer.Close()

	p, err := pc.products.UploadImage(c.Context(), actor(c), c.Param("id"), up)
	if err != nil {
		pc.Fail(c, err)
		return
	}
	c.OK(p)
}
