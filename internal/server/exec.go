package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core"
	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
)

const maxExecBody = 64 << 10

// execRequest is the JSON body of POST /api/exec. Which fields are read
// depends on Operation.
type execRequest struct {
	Operation string `json:"operation"`
	Command   string `json:"command,omitempty"`
	Dir       string `json:"dir,omitempty"`
	Manager   string `json:"manager,omitempty"`
	Package   string `json:"package,omitempty"`
	Pid       any    `json:"pid,omitempty"`
}

// execResponse is the JSON body of a finished operation.
type execResponse struct {
	Operation  string `json:"operation"`
	ExitCode   int    `json:"exit_code"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Pid        int    `json:"pid,omitempty"`
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "content type must be application/json"})
		return
	}

	var req execRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExecBody))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	ctx := r.Context()
	var (
		result *core.Result
		pid    int
		err    error
	)
	switch req.Operation {
	case core.OpRunCommand:
		result, err = s.engine.RunCommand(ctx, req.Command, req.Dir)
	case core.OpInstall:
		result, err = s.engine.InstallPackage(ctx, req.Manager, req.Package)
	case core.OpUninstall:
		result, err = s.engine.UninstallPackage(ctx, req.Manager, req.Package)
	case core.OpListPackages:
		result, err = s.engine.ListPackages(ctx, req.Manager)
	case core.OpStopProcess:
		pid, err = s.engine.StopProcess(ctx, req.Pid)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown operation %q", req.Operation)})
		return
	}

	var verr *security.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, verdict{Field: verr.Field, Kind: string(verr.Kind), Reason: verr.Reason})
		return
	}

	resp := execResponse{Operation: req.Operation, Pid: pid}
	if err != nil {
		s.logger.Error("operation failed", "operation", req.Operation, "error", err)
		resp.ExitCode = -1
		resp.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	if result != nil {
		resp.ExitCode = result.ExitCode
		resp.Output = result.Output
		resp.DurationMs = result.Duration.Milliseconds()
		if result.Error != nil {
			resp.Error = result.Error.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
