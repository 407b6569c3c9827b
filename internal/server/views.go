package server

import "chartlens/internal/types"

type reportView struct {
	types.Report
	Headline string `json:"headline"`
	Color    string `json:"color"`
}

// outcomeResponse is an Outcome plus the presentation hints of its report
type outcomeResponse struct {
	*types.Outcome
	Report *reportView `json:"report,omitempty"`
	State  types.State `json:"state"`
}

func newOutcomeResponse(o *types.Outcome, state types.State) outcomeResponse {
	resp := outcomeResponse{Outcome: o, State: state}
	if o.Report != nil {
		resp.Report = &reportView{Report: *o.Report, Headline: o.Report.Headline(), Color: o.Report.Color()}
	}
	return resp
}

type errorResponse struct {
	Error string      `json:"error"`
	State types.State `json:"state"`
}
