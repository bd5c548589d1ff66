package server

import (
	"sapp/internal/models"
	"sapp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type contentRequest struct {
	ContentTitle       string `json:"content_title"`
	ContentDescription string `json:"content_description"`
	ContentURL         string `json:"content_url"`
	Ordinal            int    `json:"ordinal"`
}

func (r contentRequest) spec() service.ContentSpec {
	return service.ContentSpec{
		ContentTitle:       r.ContentTitle,
		ContentDescription: r.ContentDescription,
		ContentURL:         r.ContentURL,
		Ordinal:            r.Ordinal,
	}
}

type learningPathRequest struct {
	Name     string           `json:"name"`
	Tag      int              `json:"tag"`
	Contents []contentRequest `json:"contents"`
}

type completionRequest struct {
	ContentIDs  []uint `json:"content_ids"`
	IsCompleted bool   `json:"is_completed"`
}

func (s *Server) GetUserLearningPaths(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	paths, err := s.pathService.GetLearningPathsByUserID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(paths)
}

func (s *Server) GetLearningPath(c *fiber.Ctx) error {
	pathID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	path, err := s.pathService.GetLearningPathByID(c.UserContext(), pathID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(path)
}

func (s *Server) GetLearningPathCompletion(c *fiber.Ctx) error {
	pathID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	pct, err := s.pathService.CalculateCompletionPercentage(c.UserContext(), pathID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"learning_path_id": pathID, "completion_percentage": pct})
}

// CreateLearningPath creates a path with its initial contents for the caller (protected)
func (s *Server) CreateLearningPath(c *fiber.Ctx) error {
	var req learningPathRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	specs := make([]service.ContentSpec, 0, len(req.Contents))
	for _, item := range req.Contents {
		specs = append(specs, item.spec())
	}
	path, err := s.pathService.CreateLearningPath(c.UserContext(), service.CreateLearningPathInput{
		UserID:   currentUserID(c),
		Name:     req.Name,
		Tag:      req.Tag,
		Contents: specs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(path)
}

func (s *Server) UpdateLearningPath(c *fiber.Ctx) error {
	pathID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req learningPathRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	path, err := s.pathService.UpdateLearningPath(c.UserContext(), service.UpdateLearningPathInput{
		PathID: pathID,
		Name:   req.Name,
		Tag:    req.Tag,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(path)
}

func (s *Server) DeleteLearningPath(c *fiber.Ctx) error {
	pathID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.pathService.DeleteLearningPath(c.UserContext(), service.DeleteLearningPathInput{
		PathID: pathID,
		UserID: currentUserID(c),
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) AddLearningPathContent(c *fiber.Ctx) error {
	pathID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	content, err := s.pathService.AddContent(c.UserContext(), pathID, req.spec())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(content)
}

func (s *Server) UpdateContentCompletion(c *fiber.Ctx) error {
	contentID, err := parseID(c, "contentId")
	if err != nil {
		return nil
	}
	var req completionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	content, err := s.pathService.UpdateContentCompletion(c.UserContext(), service.UpdateContentCompletionInput{
		ContentID:   contentID,
		IsCompleted: req.IsCompleted,
		UserID:      currentUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(content)
}

// BatchUpdateContentCompletion marks several items at once; nothing changes unless every id
// exists and belongs to the caller.
func (s *Server) BatchUpdateContentCompletion(c *fiber.Ctx) error {
	var req completionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if len(req.ContentIDs) == 0 {
		return respondError(c, models.NewValidationError("content_ids is required"))
	}
	contents, err := s.pathService.BatchUpdateContentCompletion(c.UserContext(), service.BatchUpdateContentCompletionInput{
		ContentIDs:  req.ContentIDs,
		IsCompleted: req.IsCompleted,
		UserID:      currentUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(contents)
}

func (s *Server) DeleteLearningPathContent(c *fiber.Ctx) error {
	contentID, err := parseID(c, "contentId")
	if err != nil {
		return nil
	}
	if err := s.pathService.DeleteContent(c.UserContext(), service.DeleteContentInput{
		ContentID: contentID,
		UserID:    currentUserID(c),
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
