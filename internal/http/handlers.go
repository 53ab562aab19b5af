package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/wikibot/internal/dictionary"
	"github.com/fyrsmithlabs/wikibot/internal/guild"
	"github.com/fyrsmithlabs/wikibot/internal/lookup"
	"github.com/fyrsmithlabs/wikibot/internal/prefix"
)

const maxModResponseSize = 4 << 20

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Prefixes: s.svc.PrefixCount(),
		Recipes:  s.svc.RecipeCount(),
	})
}

func parseGuild(c echo.Context) (guild.ID, error) {
	id, err := guild.ParseID(c.Param("guild"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid guild id")
	}
	return id, nil
}

func parsePartition(c echo.Context) (guild.ID, guild.Purpose, error) {
	id, err := parseGuild(c)
	if err != nil {
		return 0, "", err
	}
	p, err := guild.ParsePurpose(c.Param("purpose"))
	if err != nil {
		return 0, "", echo.NewHTTPError(http.StatusNotFound, "unknown dictionary: "+c.Param("purpose"))
	}
	return id, p, nil
}

// httpError maps domain errors to status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, dictionary.ErrKeyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, dictionary.ErrKeyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, dictionary.ErrEmptyKey),
		errors.Is(err, dictionary.ErrEmptyBody),
		errors.Is(err, dictionary.ErrAttachmentNotAllowed),
		errors.Is(err, prefix.ErrEmptyPrefix),
		errors.Is(err, guild.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, lookup.ErrUnknownPurpose):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}

func (s *Server) handleResolve(c echo.Context) error {
	id, p, err := parsePartition(c)
	if err != nil {
		return err
	}

	// message= takes a whole chat message; q= a bare query.
	var res dictionary.Result
	if msg := c.QueryParam("message"); msg != "" {
		res, err = s.svc.ResolveMessage(c.Request().Context(), id, p, msg)
	} else {
		res, err = s.svc.Resolve(c.Request().Context(), id, p, c.QueryParam("q"))
	}
	if err != nil {
		return httpError(err)
	}

	if !res.Found() {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:  "no matching entry",
			Result: res.Kind.String(),
		})
	}
	return c.JSON(http.StatusOK, ResolveResponse{
		Result:     res.Kind.String(),
		Key:        res.Key,
		Body:       res.Entry.Body,
		Attachment: res.Entry.Attachment,
		Distance:   res.Distance,
	})
}

func (s *Server) handleKeys(c echo.Context) error {
	id, p, err := parsePartition(c)
	if err != nil {
		return err
	}

	keys, err := s.svc.Keys(c.Request().Context(), id, p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, KeysResponse{Keys: keys})
}

func (s *Server) handleCreate(c echo.Context) error {
	id, p, err := parsePartition(c)
	if err != nil {
		return err
	}

	var req EntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entry := dictionary.Entry{Body: req.Body, Attachment: req.Attachment}
	if err := s.svc.Mutate(c.Request().Context(), id, p, lookup.OpAdd, req.Key, entry); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, EntryResponse{
		Key:        dictionary.NormalizeKey(req.Key),
		Body:       entry.Body,
		Attachment: entry.Attachment,
	})
}

func (s *Server) handleReplace(c echo.Context) error {
	id, p, err := parsePartition(c)
	if err != nil {
		return err
	}

	var req EntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	key := c.Param("key")
	entry := dictionary.Entry{Body: req.Body, Attachment: req.Attachment}
	if err := s.svc.Mutate(c.Request().Context(), id, p, lookup.OpSet, key, entry); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, EntryResponse{
		Key:        dictionary.NormalizeKey(key),
		Body:       entry.Body,
		Attachment: entry.Attachment,
	})
}

func (s *Server) handleDelete(c echo.Context) error {
	id, p, err := parsePartition(c)
	if err != nil {
		return err
	}

	if err := s.svc.Mutate(c.Request().Context(), id, p, lookup.OpDelete, c.Param("key"), dictionary.Entry{}); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteAll(c echo.Context) error {
	id, p, err := parsePartition(c)
	if err != nil {
		return err
	}

	if err := s.svc.Mutate(c.Request().Context(), id, p, lookup.OpDeleteAll, "", dictionary.Entry{}); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetPrefix(c echo.Context) error {
	id, err := parseGuild(c)
	if err != nil {
		return err
	}

	p, ok := s.svc.Prefix(id)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no prefix registered"})
	}
	return c.JSON(http.StatusOK, PrefixResponse{Prefix: p, Existed: true})
}

func (s *Server) handleSetPrefix(c echo.Context) error {
	id, err := parseGuild(c)
	if err != nil {
		return err
	}

	var req PrefixRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	previous, existed, err := s.svc.RegisterPrefix(c.Request().Context(), id, req.Prefix)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, PrefixResponse{
		Prefix:   strings.TrimSpace(req.Prefix),
		Previous: previous,
		Existed:  existed,
	})
}

func (s *Server) handleRecipe(c echo.Context) error {
	res := s.svc.Recipe(c.Request().Context(), c.QueryParam("q"))
	if !res.Found() {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:  "no matching recipe",
			Result: res.Kind.String(),
		})
	}

	return c.JSON(http.StatusOK, RecipeResponse{
		Result:   res.Kind.String(),
		Key:      res.Key,
		Name:     s.svc.RecipeName(res.Key),
		Cost:     res.Record.Cost,
		Distance: res.Distance,
		Inputs:   s.svc.Ingredients(res.Record.Inputs),
		Outputs:  s.svc.Ingredients(res.Record.Outputs),
	})
}

// handleResolveMod takes a raw mod portal search response as the body. A
// query that matches nothing gets a 404 carrying the listing.
func (s *Server) handleResolveMod(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxModResponseSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}

	res, err := s.svc.ResolveMod(c.Request().Context(), c.QueryParam("q"), body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid search response")
	}

	status := http.StatusOK
	if !res.Match.Found() {
		status = http.StatusNotFound
	}
	return c.JSON(status, ModResponse{
		Result:  res.Match.Kind.String(),
		Name:    res.Mod.Name,
		Title:   res.Mod.Title,
		Owner:   res.Mod.Owner,
		Summary: res.Mod.Summary,
		Link:    res.Link,
		Results: res.Results,
		Listing: res.Summary,
	})
}
