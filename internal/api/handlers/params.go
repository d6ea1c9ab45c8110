package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"validity-service/internal/db/queries"
)

// pathID достает идентификатор из пути. Строка, не являющаяся UUID,
// не может существовать в базе, поэтому считается ненайденной записью.
func pathID(c *gin.Context, name string) (string, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", queries.ErrNotFound
	}
	return id.String(), nil
}
