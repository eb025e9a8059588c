package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
)

// DownstreamErrorResponse covers the two error bodies the catalog can send:
// the {"error":{code,message}} envelope and the {"detail": "..."} form.
type DownstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into the failure taxonomy. The body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return mapStatus(resp.StatusCode, "", serviceName)
	}

	var downstream DownstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil {
		if downstream.Error != nil {
			return mapStatus(resp.StatusCode, downstream.Error.Message, serviceName)
		}
		if downstream.Detail != "" {
			return mapStatus(resp.StatusCode, downstream.Detail, serviceName)
		}
	}

	return mapStatus(resp.StatusCode, strings.TrimSpace(string(bodyBytes)), serviceName)
}

func mapStatus(status int, message, serviceName string) error {
	switch {
	case status == http.StatusNotFound:
		id := message
		if id == "" {
			id = "requested"
		}
		return apperrors.NotFound(serviceName+" resource", id)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s is unavailable", serviceName))
	default:
		msg := ""
		if message != "" {
			msg = fmt.Sprintf("%s responded with status %d: %s", serviceName, status, message)
		}
		return apperrors.ServerFailure(serviceName, status, msg)
	}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
