package handler

import (
	"github.com/gofiber/fiber/v2"

	"docgate/internal/auth"
	"docgate/internal/http/middleware"
	"docgate/internal/model"
	"docgate/internal/service"
)

type documentsResponse struct {
	Documents []model.Document `json:"documents"`
}

type documentResponse struct {
	Document *model.Document `json:"document"`
}

type statsResponse struct {
	Stats *model.DocumentStats `json:"stats"`
}

type deleteResponse struct {
	Success bool `json:"success" example:"true"`
}

type legacyItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type legacyItemsResponse struct {
	Message string       `json:"message"`
	Items   []legacyItem `json:"items"`
}

// withIdentity resolves the caller set by middleware.Authenticate. A route
// mounted without it fails closed.
func withIdentity(fn func(c *fiber.Ctx, who model.Identity) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return writeDomainError(c, auth.ErrMissingCredential)
		}
		return fn(c, who)
	}
}

func parseInput(c *fiber.Ctx) (model.DocumentInput, error) {
	var in model.DocumentInput
	if err := c.BodyParser(&in); err != nil {
		return model.DocumentInput{}, err
	}
	return in, nil
}

// ListDocuments godoc
// @Summary      List documents
// @Description  Every document the caller may see, in store order.
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  documentsResponse
// @Failure      401  {object}  errorPayload
// @Router       /api/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, who model.Identity) error {
		docs, err := docSvc.List(c.UserContext(), who)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(documentsResponse{Documents: docs})
	})
}

// SearchDocuments godoc
// @Summary      Search documents
// @Description  Case-insensitive match on title, description and tags, within the caller's visible set.
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  false  "search text"
// @Success      200    {object}  documentsResponse
// @Failure      401    {object}  errorPayload
// @Router       /api/documents/search [get]
func SearchDocuments(docSvc service.DocumentService) fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, who model.Identity) error {
		docs, err := docSvc.Search(c.UserContext(), who, c.Query("query"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(documentsResponse{Documents: docs})
	})
}

// DocumentStats godoc
// @Summary      Collection statistics
// @Description  Counts by status, file type and access level. Admin only.
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      403  {object}  errorPayload
// @Router       /api/documents/stats [get]
func DocumentStats(docSvc service.DocumentService) fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, who model.Identity) error {
		stats, err := docSvc.Stats(c.UserContext(), who)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(statsResponse{Stats: stats})
	})
}

// GetDocument godoc
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "document id"
// @Success      200  {object}  documentResponse
// @Failure      404  {object}  errorPayload
// @Router       /api/documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, who model.Identity) error {
		doc, err := docSvc.Get(c.UserContext(), who, c.Params("id"))
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(documentResponse{Document: doc})
	})
}

// CreateDocument godoc
// @Summary      Create a document
// @Description  The caller becomes the owner. Non-admin documents start as draft.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        document  body      model.DocumentInput  true  "document fields"
// @Success      201       {object}  documentResponse
// @Failure      400       {object}  errorPayload
// @Router       /api/documents [post]
func CreateDocument(docSvc service.DocumentService) fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, who model.Identity) error {
		in, err := parseInput(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "request body must be a JSON object")
		}
		doc, err := docSvc.Create(c.UserContext(), who, in)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(documentResponse{Document: doc})
	})
}

// UpdateDocument godoc
// @Summary      Update a document
// @Description  Owner or admin. Id, owner and creation time cannot change.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string               true  "document id"
// @Param        document  body      model.DocumentInput  true  "fields to change"
// @Success      200       {object}  documentResponse
// @Failure      403       {object}  errorPayload
// @Failure      404       {object}  errorPayload
// @Router       /api/documents/{id} [put]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, who model.Identity) error {
		in, err := parseInput(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "request body must be a JSON object")
		}
		doc, err := docSvc.Update(c.UserContext(), who, c.Params("id"), in)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(documentResponse{Document: doc})
	})
}

// DeleteDocument godoc
// @Summary      Delete a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "document id"
// @Success      200  {object}  deleteResponse
// @Failure      404  {object}  errorPayload
// @Router       /api/documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, who model.Identity) error {
		if err := docSvc.Delete(c.UserContext(), who, c.Params("id")); err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(deleteResponse{Success: true})
	})
}

// LegacyItems godoc
// @Summary      Deprecated item listing
// @Description  Kept for old clients; points them at /api/documents.
// @Tags         legacy
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  legacyItemsResponse
// @Router       /api/items [get]
// @Deprecated
func LegacyItems() fiber.Handler {
	return withIdentity(func(c *fiber.Ctx, _ model.Identity) error {
		c.Set("Deprecation", "true")
		c.Set(fiber.HeaderLink, `</api/documents>; rel="successor-version"`)
		return c.JSON(legacyItemsResponse{
			Message: "API updated! Please use /api/documents instead of /api/items",
			Items: []legacyItem{
				{ID: 1, Name: "Please use the documents API"},
				{ID: 2, Name: "This endpoint is deprecated"},
			},
		})
	})
}
