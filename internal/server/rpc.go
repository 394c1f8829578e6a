package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleJSONRPC handles JSON-RPC 2.0 requests on /rpc.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string        `json:"jsonrpc"`
		ID      interface{}   `json:"id"`
		Method  string        `json:"method"`
		Params  []interface{} `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "minimization.start":
		result, err = s.rpcMinimizeStart(request.Params)
	case "minimization.status":
		result, err = s.rpcMinimizeStatus(request.Params)
	case "minimization.cancel":
		err = s.rpcMinimizeCancel(request.Params)
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, -32000, err.Error(), request.ID)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// rpcMinimizeStart handles the minimization.start method.
// Expected parameters: {"objective": "rosenbrock", "start": [-1.2, 1.0]}
// or {"objective": "sphere", "bounds": [[-5, 5], [-5, 5]]}.
// Returns: {"job_id": "...", "status": "pending"}
func (s *Server) rpcMinimizeStart(params []interface{}) (interface{}, error) {
	paramMap, err := rpcParamObject(params)
	if err != nil {
		return nil, err
	}

	var req MinimizeRequest

	req.Objective, _ = paramMap["objective"].(string)
	if req.Objective == "" {
		return nil, fmt.Errorf("objective is required")
	}

	if raw, ok := paramMap["start"].([]interface{}); ok && len(raw) > 0 {
		req.Start = make([]float64, len(raw))
		for i, v := range raw {
			x, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("start coordinates must be numbers")
			}
			req.Start[i] = x
		}
	}

	if raw, ok := paramMap["bounds"].([]interface{}); ok {
		req.Bounds = make([][2]float64, len(raw))
		for i, b := range raw {
			pair, ok := b.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("invalid bounds format, expected [[min1, max1], [min2, max2], ...]")
			}
			lo, ok1 := pair[0].(float64)
			hi, ok2 := pair[1].(float64)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("bounds must be numbers")
			}
			req.Bounds[i] = [2]float64{lo, hi}
		}
	}

	if v, ok := paramMap["max_iterations"].(float64); ok {
		req.MaxIterations = int(v)
	}
	if v, ok := paramMap["tolerance"].(float64); ok {
		req.Tolerance = v
	}
	if v, ok := paramMap["critlim"].(float64); ok {
		req.CritLim = v
	}
	if v, ok := paramMap["seed"].(float64); ok {
		req.Seed = int64(v)
	}

	state, err := s.startJob(&req)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"job_id": state.ID,
		"status": state.Status,
	}, nil
}

// rpcMinimizeStatus handles the minimization.status method.
// Expected parameters: {"job_id": "..."}.
func (s *Server) rpcMinimizeStatus(params []interface{}) (interface{}, error) {
	paramMap, err := rpcParamObject(params)
	if err != nil {
		return nil, err
	}

	id, ok := paramMap["job_id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("job_id is required")
	}

	return s.jobStatus(id)
}

// rpcMinimizeCancel handles the minimization.cancel method.
// Expected parameters: {"job_id": "..."}.
func (s *Server) rpcMinimizeCancel(params []interface{}) error {
	paramMap, err := rpcParamObject(params)
	if err != nil {
		return err
	}

	id, ok := paramMap["job_id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("job_id is required")
	}

	return s.cancelJob(id)
}

func rpcParamObject(params []interface{}) (map[string]interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("missing required parameters")
	}
	paramMap, ok := params[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid parameter format, expected object")
	}
	return paramMap, nil
}

// respondWithError sends a JSON-RPC 2.0 error response.
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
