package command

import (
	"strings"

	"github.com/adamavenir/quill/internal/db"
)

// newContextFormatter loads every username once for display.
func newContextFormatter(ctx *CommandContext) (formatter, error) {
	users, err := ctx.Service.ListUsers(ctx.Ctx)
	if err != nil {
		return formatter{}, err
	}
	count, err := db.GetMessageCount(ctx.Ctx, ctx.DB)
	if err != nil {
		return formatter{}, err
	}
	return newFormatter(users, count), nil
}

func joinContent(args []string) string {
	return strings.Join(args, " ")
}
