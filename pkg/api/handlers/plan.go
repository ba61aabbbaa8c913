package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Predictia/chronoplan/pkg/observability"
	"github.com/Predictia/chronoplan/pkg/partition"
	"github.com/Predictia/chronoplan/pkg/timeaxis"
)

// PlanResponse describes a partition plan without executing it.
type PlanResponse struct {
	Mode       string               `json:"mode"`
	Partitions int                  `json:"partitions"`
	Ticks      int                  `json:"ticks,omitempty"`
	Chunks     []timeaxis.ChunkEntry `json:"chunks,omitempty"`
	Steps      []int                `json:"steps,omitempty"`
}

// GetPlan builds a dry-run partition plan from query parameters. No archive
// request is issued.
func (s *Server) GetPlan(c fiber.Ctx) error {
	mode := c.Query("mode", "date")

	switch mode {
	case "date":
		return s.getDatePlan(c)
	case "step":
		return s.getStepPlan(c)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "mode must be date or step")
	}
}

func (s *Server) getDatePlan(c fiber.Ctx) error {
	spec := timeaxis.TimeSpec{
		DataStart:    c.Query("dataStart"),
		RequestStart: c.Query("start"),
		RequestEnd:   c.Query("end"),
		Timestep:     c.Query("timestep"),
		SaveFreq:     c.Query("saveFreq"),
		ChunkFreq:    c.Query("chunkFreq"),
		ShiftMonth:   fiber.Query[bool](c, "shiftMonth"),
		SkipLast:     fiber.Query[bool](c, "skipLast"),
	}

	ticks, chunks, err := timeaxis.Build(spec)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	aggregation := c.Query("aggregation")
	if aggregation == "" {
		_, _, chunkFreq, ferr := spec.Frequencies()
		if ferr != nil {
			return fiber.NewError(fiber.StatusBadRequest, ferr.Error())
		}
		aggregation = chunkFreq.String()
	}

	aggFreq, err := timeaxis.ParseFreq(aggregation)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	count, err := partition.Count(spec.DataStart, spec.RequestStart, spec.RequestEnd, aggFreq)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	observability.RecordPlan("date", count, len(chunks))

	return c.JSON(PlanResponse{
		Mode:       "date",
		Partitions: count,
		Ticks:      len(ticks),
		Chunks:     chunks,
	})
}

func (s *Server) getStepPlan(c fiber.Ctx) error {
	stepSeconds := fiber.Query[int64](c, "stepSeconds")

	steps, err := partition.StepRangeTokens(
		c.Query("baseDate"),
		c.Query("baseTime", "0000"),
		c.Query("start"),
		c.Query("end"),
		stepSeconds,
	)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	observability.RecordPlan("step", len(steps), 0)

	return c.JSON(PlanResponse{
		Mode:       "step",
		Partitions: len(steps),
		Steps:      steps,
	})
}
