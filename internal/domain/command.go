package domain

// CommandType classifies what the user wants to do.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandHelp
	CommandQuit
	CommandListAll
	CommandListIngredients
	CommandListRecipes
	CommandAddIngredient
	CommandAddRecipe
	CommandRemoveIngredient
	CommandRemoveRecipe
	CommandShowRecipe
	CommandSearch
)

// String returns a human-readable command type.
func (c CommandType) String() string {
	switch c {
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	case CommandListAll:
		return "list_all"
	case CommandListIngredients:
		return "list_ingredients"
	case CommandListRecipes:
		return "list_recipes"
	case CommandAddIngredient:
		return "add_ingredient"
	case CommandAddRecipe:
		return "add_recipe"
	case CommandRemoveIngredient:
		return "remove_ingredient"
	case CommandRemoveRecipe:
		return "remove_recipe"
	case CommandShowRecipe:
		return "show_recipe"
	case CommandSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Command represents a parsed user action.
type Command struct {
	Type    CommandType
	Payload string // literal arguments; empty means collect interactively
}

// Interactive reports whether the command carries no literal arguments.
func (c *Command) Interactive() bool {
	return c.Payload == ""
}
