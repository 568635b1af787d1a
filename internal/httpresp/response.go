package httpresp

import "github.com/gin-gonic/gin"

type Envelope struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func OK(c *gin.Context, data any) {
	c.JSON(200, Envelope{OK: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(201, Envelope{OK: true, Data: data})
}

func List[T any](c *gin.Context, data []T) {
	c.JSON(200, Envelope{OK: true, Data: ListResponse[T]{
		Data:  data,
		Total: len(data),
	}})
}
