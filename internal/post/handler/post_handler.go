package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	authdomain "github.com/wizrdcoder/blog-api/internal/auth/domain"
	autherror "github.com/wizrdcoder/blog-api/internal/errors"
	"github.com/wizrdcoder/blog-api/internal/post/domain"
	"github.com/wizrdcoder/blog-api/internal/post/dto"
	"github.com/wizrdcoder/blog-api/internal/post/service"
)

var validate = validator.New()

type PostHandler struct {
	postService *service.PostService
	log         *zap.Logger
}

func NewPostHandler(postService *service.PostService, log *zap.Logger) *PostHandler {
	return &PostHandler{postService: postService, log: log}
}

// RegisterRoutes mounts the post routes. requireUser is the auth middleware
// shared with the auth handler.
func RegisterRoutes(app *fiber.App, h *PostHandler, requireUser fiber.Handler) {
	posts := app.Group("/api/v1/posts")

	posts.Get("/", h.List)
	posts.Get("/:id", h.Get)
	posts.Post("/", requireUser, h.Create)
	posts.Put("/:id", requireUser, h.Update)
	posts.Delete("/:id", requireUser, h.Delete)
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	filter := domain.ListFilter{
		PublishedOnly: c.QueryBool("published_only", true),
		AuthorID:      c.Query("author_id"),
		Search:        c.Query("search"),
		Limit:         c.QueryInt("limit", 100),
		Offset:        c.QueryInt("skip", 0),
	}

	posts, err := h.postService.List(c.UserContext(), filter)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.NewPostListOutput(posts))
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	post, err := h.postService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.NewPostOutput(post))
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	var input dto.PostCreateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed"})
	}

	post, err := h.postService.Create(c.UserContext(), currentUser(c), input)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewPostOutput(post))
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	var input dto.PostUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed"})
	}

	post, err := h.postService.Update(c.UserContext(), currentUser(c), c.Params("id"), input)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.NewPostOutput(post))
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	if err := h.postService.Delete(c.UserContext(), currentUser(c), c.Params("id")); err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted"})
}

func (h *PostHandler) errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, autherror.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	h.log.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("method", c.Method()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func currentUser(c *fiber.Ctx) *authdomain.User {
	user, _ := c.Locals("user").(*authdomain.User)
	return user
}
