package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/tfbscan/tfbscan/internal/types"
)

// NoResultMessage is returned in place of an empty window list.
const NoResultMessage = "No TFBS found with these parameters, please choose different ones"

// Window is one accepted window in the response.
type Window struct {
	WindowID    int                         `json:"window_id"`
	TF          string                      `json:"tf"`
	WindowPos   [2]int                      `json:"window_pos"`
	WindowScore float64                     `json:"window_score"`
	Details     []types.SequenceObservation `json:"details"`
}

// Parameters echoes the request in the no-result payload.
type Parameters struct {
	Motif           string   `json:"motif"`
	Threshold       float64  `json:"threshold"`
	PromoterLength  int      `json:"promoter_length"`
	WindowSize      int      `json:"window_size"`
	WindowThreshold float64  `json:"window_threshold"`
	Pseudocount     float64  `json:"pseudocount"`
	MRNA            []string `json:"mrna"`
}

// NoResult is the informational payload for an empty search.
type NoResult struct {
	Message    string     `json:"message"`
	Parameters Parameters `json:"parameters"`
}

// Windows converts accepted windows to the response shape.
func Windows(tf string, ws []types.WindowResult) []Window {
	out := make([]Window, 0, len(ws))
	for _, w := range ws {
		details := w.Observations
		if details == nil {
			details = []types.SequenceObservation{}
		}
		out = append(out, Window{
			WindowID:    w.ID,
			TF:          tf,
			WindowPos:   [2]int{w.Start, w.End},
			WindowScore: w.Score,
			Details:     details,
		})
	}
	return out
}

// Response returns the list of windows, or a NoResult when there are none.
func Response(tf string, ws []types.WindowResult, params Parameters) any {
	if len(ws) == 0 {
		if params.MRNA == nil {
			params.MRNA = []string{}
		}
		return NoResult{Message: NoResultMessage, Parameters: params}
	}
	return Windows(tf, ws)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteJSONPretty writes v as indented JSON highlighted for a 256-colour
// terminal. It falls back to plain JSON when highlighting fails.
func WriteJSONPretty(w io.Writer, v any) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, v); err != nil {
		return err
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	iterator, err := lexer.Tokenise(nil, buf.String())
	if err != nil {
		_, err = w.Write(buf.Bytes())
		return err
	}
	return formatter.Format(w, style, iterator)
}
