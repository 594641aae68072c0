package dto

import (
	"fmt"
	"time"

	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Description string            `json:"description,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// PaginationResponse 分页响应元数据
type PaginationResponse struct {
	AfterID  string `json:"after_id,omitempty"`
	Limit    int    `json:"limit"`
	Returned int    `json:"returned"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, traceID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
func ErrorResponse(err error, traceID string) *APIResponse {
	var errorDTO *ErrorDTO

	if riskErr, ok := errors.AsRiskError(err); ok {
		errorDTO = &ErrorDTO{
			Code:        string(riskErr.Code()),
			Message:     riskErr.Error(),
			Description: riskErr.Description(),
			Details:     stringDetails(riskErr.Metadata()),
		}
	} else {
		errorDTO = &ErrorDTO{
			Code:        string(constants.ErrCodeServerError),
			Message:     "Internal server error",
			Description: "An internal error occurred",
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// RateLimitExceededResponse 创建速率限制响应
func RateLimitExceededResponse(retryAfter int, traceID string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &ErrorDTO{
			Code:        string(constants.ErrCodeRateLimitExceeded),
			Message:     "Rate limit exceeded",
			Description: "Too many requests, please try again later",
			Details: map[string]string{
				"retry_after": fmt.Sprintf("%d", retryAfter),
			},
		},
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

func stringDetails(metadata map[string]interface{}) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	details := make(map[string]string, len(metadata))
	for k, v := range metadata {
		details[k] = fmt.Sprintf("%v", v)
	}
	return details
}

//Personal.AI order the ending
