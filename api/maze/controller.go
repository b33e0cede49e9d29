package mazeapi

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/vinom-maze/domain"
	"github.com/beka-birhanu/vinom-maze/explorer"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MazeController serves maze generation and exploration runs.
type MazeController struct {
	solver i.Solver
}

// NewMazeController initializes a MazeController.
func NewMazeController(s i.Solver) (*MazeController, error) {
	if s == nil {
		return nil, errors.New("solver is required")
	}
	return &MazeController{solver: s}, nil
}

// RegisterPublic registers public routes.
func (mc *MazeController) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/mazes", mc.generate)
}

// RegisterProtected registers protected routes.
func (mc *MazeController) RegisterProtected(route *gin.RouterGroup) {
	runs := route.Group("/runs")
	{
		runs.POST("", mc.solve)
		runs.GET("/:ID", mc.run)
	}
}

// generate builds a maze and places its obstacles.
func (mc *MazeController) generate(ctx *gin.Context) {
	var request MazeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scene, err := mc.solver.Generate(ctx.Request.Context(), request.toService())
	if err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, newMazeResponse(scene))
}

// solve generates a maze and explores it with the simulated robot.
func (mc *MazeController) solve(ctx *gin.Context) {
	var request MazeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := mc.solver.Solve(ctx.Request.Context(), request.toService())
	if err != nil {
		body := gin.H{"error": err.Error()}
		if run != nil {
			body["run"] = run
		}
		ctx.JSON(statusOf(err), body)
		return
	}

	ctx.JSON(http.StatusCreated, run)
}

// run returns a stored exploration run.
func (mc *MazeController) run(ctx *gin.Context) {
	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := mc.solver.Run(ctx.Request.Context(), ID)
	if err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, run)
}

func statusOf(err error) int {
	var cfgErr *maze.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, dmn.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, explorer.ErrRobotUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
