/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gateway

import (
	"errors"
)

// FallbackDetail is reported when the gateway fails without saying why.
const FallbackDetail = "Request failed"

var (
	// ErrGateway is matched by every *GatewayError.
	ErrGateway = errors.New("gateway request failed")

	errMalformedResponse = errors.New("malformed gateway response")
	errUnknownKind       = errors.New("unknown register kind")
)

// GatewayError is a transport failure or a non-2xx response. Its message is
// the response body verbatim so it can be shown to the operator as-is.
type GatewayError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return FallbackDetail
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (*GatewayError) Is(target error) bool {
	return target == ErrGateway
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool {
	var gErr *GatewayError

	return errors.As(err, &gErr) && gErr.StatusCode == 404
}
