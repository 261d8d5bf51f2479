package notifier

import (
	"context"
	"errors"
	"strings"

	"StockRoaster/internal/model"
	"StockRoaster/internal/pipeline"
	"StockRoaster/internal/present"
)

// Roaster runs one roast request to completion.
type Roaster interface {
	Run(ctx context.Context, req pipeline.Request) *pipeline.Result
	Defaults() pipeline.Defaults
}

// RoastBot answers chat commands:
//
//	/roast <ticker or company> [period] [tone]
//	/help
type RoastBot struct {
	roaster   Roaster
	presenter present.TelegramPresenter
}

func NewRoastBot(r Roaster) *RoastBot {
	return &RoastBot{roaster: r}
}

// Handle is a CommandHandler.
func (b *RoastBot) Handle(ctx context.Context, text string) string {
	cmd, args := ParseCommand(text)
	switch cmd {
	case "/roast":
		req, err := RoastArgs(args, b.roaster.Defaults())
		if err != nil {
			return b.presenter.RenderError(asError(err))
		}
		return present.Render(b.presenter, b.roaster.Run(ctx, req))
	case "/help", "/start":
		return HelpText()
	case "":
		return ""
	default:
		return "Unknown command. " + HelpText()
	}
}

// ParseCommand splits "/cmd@bot a b" into "/cmd" and its arguments. Text that
// is not a command yields an empty cmd.
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	return cmd, fields[1:]
}

// RoastArgs reads an optional trailing period and tone (either order) off
// args; the rest is the query.
func RoastArgs(args []string, d pipeline.Defaults) (pipeline.Request, error) {
	var period, tone string
	for i := 0; i < 2 && len(args) > 1; i++ {
		last := args[len(args)-1]
		if _, err := model.ParsePeriod(last); err == nil && period == "" {
			period = last
		} else if _, err := model.ParseTone(last); err == nil && tone == "" {
			tone = last
		} else {
			break
		}
		args = args[:len(args)-1]
	}
	return pipeline.ParseRequest(strings.Join(args, " "), period, tone, "", "", d)
}

func asError(err error) *model.Error {
	var e *model.Error
	if errors.As(err, &e) {
		return e
	}
	return model.NewError(model.KindInputInvalid, err.Error(), nil)
}
