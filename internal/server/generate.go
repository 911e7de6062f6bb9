package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"nihilistkernel/internal/api"

	"github.com/gin-gonic/gin"
)

// Normalize trims and lowercases a topic. It is the cache key.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func (srv *Server) generate(c *gin.Context) {
	log := requestLogger(c)

	var req api.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("bad request body: %v", err)
		errorJSON(c, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	topic := Normalize(req.UserInput)
	if topic == "" {
		errorJSON(c, http.StatusBadRequest, MsgNoInput)
		return
	}

	ctx := c.Request.Context()
	if dialogue, ok, err := srv.cache.Get(ctx, topic); err != nil {
		log.Error("cache lookup for %q failed: %v", topic, err)
		errorJSON(c, http.StatusInternalServerError, MsgGenerateFailed)
		return
	} else if ok {
		log.Info("Returning from SQLite cache for input: %s", topic)
		c.JSON(http.StatusOK, api.GenerateResponse{Dialogue: &dialogue})
		return
	}

	// Identical topics in flight share one generation, which outlives any
	// single request.
	ch := srv.flights.DoChan(topic, func() (interface{}, error) {
		return srv.generateAndStore(context.WithoutCancel(ctx), topic)
	})

	select {
	case <-ctx.Done():
		log.Warn("client went away while generating %q: %v", topic, ctx.Err())
		c.Abort()
	case res := <-ch:
		if res.Err != nil {
			log.Error("An error occurred: %v", res.Err)
			errorJSON(c, http.StatusInternalServerError, MsgGenerateFailed)
			return
		}
		dialogue := res.Val.(string)
		if res.Shared {
			log.Debug("shared generation for %q", topic)
		}
		c.JSON(http.StatusOK, api.GenerateResponse{Dialogue: &dialogue})
	}
}

// generateAndStore runs inside singleflight, where a panic would take the
// process down, so it recovers into an error.
func (srv *Server) generateAndStore(ctx context.Context, topic string) (dialogue string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()

	dialogue, err = srv.generator.Generate(ctx, topic)
	if err != nil {
		return "", err
	}
	if err := srv.cache.Put(ctx, topic, dialogue); err != nil {
		return "", err
	}
	return dialogue, nil
}
