package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// QueryString возвращает параметр или nil, если он не передан
func QueryString(r *http.Request, name string) *string {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil
	}
	return &value
}

// QueryInt целочисленный параметр, def если не передан
func QueryInt(r *http.Request, name string, def int) (int, error) {
	value := QueryString(r, name)
	if value == nil {
		return def, nil
	}
	n, err := strconv.Atoi(*value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// QueryBool логический параметр, nil если не передан
func QueryBool(r *http.Request, name string) (*bool, error) {
	value := QueryString(r, name)
	if value == nil {
		return nil, nil
	}
	b, err := strconv.ParseBool(*value)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", name)
	}
	return &b, nil
}

// QueryDate дата в формате YYYY-MM-DD, nil если не передана
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	value := QueryString(r, name)
	if value == nil {
		return nil, nil
	}
	d, err := domain.ParseDate(*value)
	if err != nil {
		return nil, fmt.Errorf("%s must be in YYYY-MM-DD format", name)
	}
	return &d, nil
}
