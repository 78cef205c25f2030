package controllers

import (
	"github.com/vitthalk15/DataDash/app/services"
	"github.com/vitthalk15/DataDash/pkg/ctx"
)

type UserController struct {
	Base
	users *services.UserService
}

func NewUserController(users *services.UserService, base Base) *UserController {
	return &UserController{Base: base, users: users}
}

// Register POST /api/users/register
func (uc *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.users.Register(c.Context(), in)
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.Created(res)
}

// Login POST /api/users/login
func (uc *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.users.Login(c.Context(), in)
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.OK(res)
}

// Me GET /api/users/me
func (uc *UserController) Me(c *ctx.Context) {
	u, err := uc.users.Me(c.Context(), actor(c))
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.OK(u)
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.users.List(c.Context(), actor(c))
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.OK(map[string]any{"users": users})
}

func (uc *UserController) Store(c *ctx.Context) {
	var in services.CreateUserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.users.Create(c.Context(), actor(c), in)
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.Created(u)
}

func (uc *UserController) Show(c *ctx.Context) {
	u, err := uc.users.Get(c.Context(), actor(c), c.Param("id"))
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.OK(u)
}

func (uc *UserController) Update(c *ctx.Context) {
	var in services.UpdateUserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.users.Update(c.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.OK(u)
}

func (uc *UserController) Destroy(c *ctx.Context) {
	if err := uc.users.Delete(c.Context(), actor(c), c.Param("id")); err != nil {
		uc.Fail(c, err)
		return
	}
	c.Message("User deleted successfully")
}

// UploadAvatar POST /api/users/{id}/avatar (multipart field "avatar")
func (uc *UserController) UploadAvatar(c *ctx.Context) {
	up, closer, ok := uc.upload(c, "avatar")
	if !ok {
		return
	}
	defer closer.Close()

	u, err := uc.users.UploadAvatar(c.Context(), actor(c), c.Param("id"), up)
	if err != nil {
		uc.Fail(c, err)
		return
	}
	c.OK(u)
}
