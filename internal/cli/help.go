package cli

import (
	"mindtree/local-app/internal/session"
)

// CommandHelp represents the structure of help information for a specific command.
type CommandHelp struct {
	Scope     string
	Operation string
	ShortDesc string
	LongDesc  string
	Arguments []string
	Examples  []string
}

// printHelp prints general, scope or operation help depending on the argument count
func (c *CLI) printHelp(args []string) {
	switch len(args) {
	case 0:
		c.showGeneralHelp()
	case 1:
		c.showScopeHelp(args[0])
	case 2:
		c.showOperationHelp(args[0], args[1])
	default:
		c.ui.Visualizer().Println("Invalid help command. Use 'help [scope] [operation]'")
	}
}

// showGeneralHelp displays an overview of all available commands grouped by scope
func (c *CLI) showGeneralHelp() {
	v := c.ui.Visualizer()
	v.Println("Command syntax: <scope> <operation> [arguments]")
	v.Println("Nodes are given by id, '.' for the selected node or 'root'. Quote text with spaces.")
	v.Println("Shortcuts: undo, redo, ls, exit, quit")
	v.Print("\nAvailable commands:\n")
	currentScope := ""
	for _, cmd := range commandHelps {
		if cmd.Scope != currentScope {
			v.Printf("\n%s:\n", cmd.Scope)
			currentScope = cmd.Scope
		}
		v.Printf("  %-10s %s\n", cmd.Operation, cmd.ShortDesc)
	}
}

// showScopeHelp displays help information for all commands within a specific scope
func (c *CLI) showScopeHelp(scope string) {
	v := c.ui.Visualizer()
	found := false
	for _, cmd := range commandHelps {
		if cmd.Scope == scope {
			if !found {
				v.Printf("Commands for %s:\n\n", scope)
				found = true
			}
			v.Printf("%-10s %s\n", cmd.Operation, cmd.ShortDesc)
		}
	}
	if !found {
		v.Printf("No help found for %s\n", scope)
	}
}

// showOperationHelp displays detailed help information for a specific operation within a scope
func (c *CLI) showOperationHelp(scope, operation string) {
	v := c.ui.Visualizer()
	for _, cmd := range commandHelps {
		if cmd.Scope == scope && cmd.Operation == operation {
			v.Printf("Command: %s %s\n", scope, operation)
			v.Printf("Description: %s\n", cmd.LongDesc)
			v.Printf("Syntax: %s\n", session.Usage(scope, operation))
			if len(cmd.Arguments) > 0 {
				v.Println("Arguments:")
				for _, arg := range cmd.Arguments {
					v.Printf("  %s\n", arg)
				}
			}
			if len(cmd.Examples) > 0 {
				v.Println("Examples:")
				for _, ex := range cmd.Examples {
					v.Printf("  %s\n", ex)
				}
			}
			return
		}
	}
	v.Printf("No help found for %s %s\n", scope, operation)
}

// commandHelps is a slice of CommandHelp structs containing help information for all commands.
var commandHelps = []CommandHelp{
	{
		Scope:     "tree",
		Operation: "new",
		ShortDesc: "Create a tree",
		LongDesc:  "Creates a tree whose root carries the name and opens it.",
		Arguments: []string{"name: (Optional) The root text, a placeholder if omitted"},
		Examples:  []string{"tree new", `tree new "Trip to Kyoto"`},
	},
	{
		Scope:     "tree",
		Operation: "list",
		ShortDesc: "List trees",
		LongDesc:  "Lists all trees, most recently opened first. The open tree is marked with *.",
		Examples:  []string{"tree list"},
	},
	{
		Scope:     "tree",
		Operation: "open",
		ShortDesc: "Open a tree",
		LongDesc:  "Opens a tree. The undo history starts empty.",
		Arguments: []string{"tree id: The id shown by tree list"},
		Examples:  []string{"tree open 3"},
	},
	{
		Scope:     "tree",
		Operation: "rename",
		ShortDesc: "Rename a tree",
		LongDesc:  "Renames a tree. Without an id the open tree is renamed. The root text is kept.",
		Arguments: []string{"tree id: (Optional) The tree to rename", "name: The new name"},
		Examples:  []string{`tree rename "Kyoto 2025"`, "tree rename 3 Archive"},
	},
	{
		Scope:     "tree",
		Operation: "delete",
		ShortDesc: "Delete a tree",
		LongDesc:  "Deletes a tree with all its nodes. Deleting the open tree opens the most recent remaining one.",
		Arguments: []string{"tree id: The tree to delete"},
		Examples:  []string{"tree delete 3"},
	},
	{
		Scope:     "tree",
		Operation: "view",
		ShortDesc: "Show the open tree",
		LongDesc:  "Shows the open tree. Children of collapsed nodes are hidden.",
		Examples:  []string{"tree view", "ls"},
	},
	{
		Scope:     "tree",
		Operation: "export",
		ShortDesc: "Export the open tree",
		LongDesc:  "Writes the open tree to a JSON or YAML file. The format follows the file extension unless given.",
		Arguments: []string{"filename: The file to write", "format: (Optional) json or yaml"},
		Examples:  []string{"tree export plan.json", "tree export plan.yml"},
	},
	{
		Scope:     "tree",
		Operation: "import",
		ShortDesc: "Import a tree",
		LongDesc:  "Reads a JSON or YAML document as a new tree and opens it.",
		Arguments: []string{"filename: The file to read", "format: (Optional) json or yaml"},
		Examples:  []string{"tree import plan.json"},
	},
	{
		Scope:     "tree",
		Operation: "reload",
		ShortDesc: "Reload the open tree",
		LongDesc:  "Re-reads the open tree from the database.",
		Examples:  []string{"tree reload"},
	},
	{
		Scope:     "node",
		Operation: "add",
		ShortDesc: "Add a child node",
		LongDesc:  "Adds a node as the last child of the parent and selects it.",
		Arguments: []string{"parent: The parent node", "text: The node text"},
		Examples:  []string{`node add root "Day 1"`, "node add . Temples"},
	},
	{
		Scope:     "node",
		Operation: "sibling",
		ShortDesc: "Add a sibling node",
		LongDesc:  "Adds a node right after the given node. The root cannot have siblings.",
		Arguments: []string{"node: The node to follow", "text: The node text"},
		Examples:  []string{`node sibling . "Day 2"`},
	},
	{
		Scope:     "node",
		Operation: "edit",
		ShortDesc: "Change the text of a node",
		LongDesc:  "Replaces the text of a node. Renaming the root also renames the tree.",
		Arguments: []string{"node: The node to edit", "text: The new text"},
		Examples:  []string{`node edit 12 "Day 1: Arashiyama"`},
	},
	{
		Scope:     "node",
		Operation: "delete",
		ShortDesc: "Delete a node",
		LongDesc:  "Deletes a node with its subtree. Deleting the root resets the tree to a placeholder root.",
		Arguments: []string{"node: The node to delete"},
		Examples:  []string{"node delete 12"},
	},
	{
		Scope:     "node",
		Operation: "move",
		ShortDesc: "Move a node",
		LongDesc:  "Moves a node before or after a target, or inside it as its last child.",
		Arguments: []string{"node: The node to move", "target: The reference node", "position: before, after or inside"},
		Examples:  []string{"node move 12 7 inside", "node move . 9 before"},
	},
	{
		Scope:     "node",
		Operation: "drop",
		ShortDesc: "Drop a node onto another",
		LongDesc:  "Moves a node as if dragged onto the target row at a vertical offset. Near the top or bottom edge it lands before or after the target, otherwise inside.",
		Arguments: []string{"node: The dragged node", "target: The node under the pointer", "offset: Pointer offset from the row top", "height: Row height"},
		Examples:  []string{"node drop 12 7 20 40"},
	},
	{
		Scope:     "node",
		Operation: "color",
		ShortDesc: "Set the background color",
		LongDesc:  "Sets a palette color on a node, or clears it.",
		Arguments: []string{"node: The node to color", "color: (Optional) A palette color or none"},
		Examples:  []string{"node color . #ffcdd2", "node color . none"},
	},
	{
		Scope:     "node",
		Operation: "toggle",
		ShortDesc: "Expand or collapse a node",
		LongDesc:  "Flips whether the children of a node are shown.",
		Examples:  []string{"node toggle 7"},
	},
	{
		Scope:     "node",
		Operation: "expand",
		ShortDesc: "Show the children of a node",
		LongDesc:  "Expands a node.",
		Examples:  []string{"node expand 7"},
	},
	{
		Scope:     "node",
		Operation: "collapse",
		ShortDesc: "Hide the children of a node",
		LongDesc:  "Collapses a node.",
		Examples:  []string{"node collapse 7"},
	},
	{
		Scope:     "node",
		Operation: "select",
		ShortDesc: "Select a node",
		LongDesc:  "Makes a node the one '.' refers to.",
		Examples:  []string{"node select 7", "node select root"},
	},
	{
		Scope:     "node",
		Operation: "find",
		ShortDesc: "Search nodes",
		LongDesc:  "Fuzzy-searches the text of every node, collapsed ones included.",
		Examples:  []string{"node find temple"},
	},
	{
		Scope:     "node",
		Operation: "context",
		ShortDesc: "Show generation context",
		LongDesc:  "Shows the outline that a generation request for the node would carry.",
		Examples:  []string{"node context", "node context 7"},
	},
	{
		Scope:     "node",
		Operation: "palette",
		ShortDesc: "List colors",
		LongDesc:  "Lists the background colors nodes can have.",
		Examples:  []string{"node palette"},
	},
	{
		Scope:     "edit",
		Operation: "begin",
		ShortDesc: "Start editing a node",
		LongDesc:  "Starts a text edit. Typed text is saved as a draft shortly after typing stops.",
		Examples:  []string{"edit begin ."},
	},
	{
		Scope:     "edit",
		Operation: "compose",
		ShortDesc: "Start a new node",
		LongDesc:  "Inserts an unsaved empty node after the anchor, or as its last child, and starts editing it. It is saved on commit unless left empty.",
		Arguments: []string{"anchor: The reference node", "where: (Optional) child or sibling, sibling by default"},
		Examples:  []string{"edit compose . child"},
	},
	{
		Scope:     "edit",
		Operation: "type",
		ShortDesc: "Replace the edit buffer",
		LongDesc:  "Sets the text of the node being edited.",
		Examples:  []string{`edit type "Fushimi Inari"`},
	},
	{
		Scope:     "edit",
		Operation: "commit",
		ShortDesc: "Finish editing",
		LongDesc:  "Saves the edit as one undoable change. Empty text deletes the node, or restores the placeholder on the root.",
		Examples:  []string{"edit commit"},
	},
	{
		Scope:     "edit",
		Operation: "cancel",
		ShortDesc: "Abandon editing",
		LongDesc:  "Restores the text the node had before the edit.",
		Examples:  []string{"edit cancel"},
	},
	{
		Scope:     "history",
		Operation: "undo",
		ShortDesc: "Undo the last change",
		LongDesc:  "Reverts the most recent change of this session.",
		Examples:  []string{"history undo", "undo"},
	},
	{
		Scope:     "history",
		Operation: "redo",
		ShortDesc: "Redo the last undone change",
		LongDesc:  "Re-applies the most recently undone change.",
		Examples:  []string{"history redo", "redo"},
	},
	{
		Scope:     "history",
		Operation: "list",
		ShortDesc: "Show the history",
		LongDesc:  "Lists recorded changes oldest first, then undone ones marked with ↻.",
		Examples:  []string{"history list"},
	},
	{
		Scope:     "gen",
		Operation: "run",
		ShortDesc: "Suggest child nodes",
		LongDesc:  "Asks the language model for child nodes and shows them as a preview. Without a prompt the node's saved prompt is used.",
		Arguments: []string{"node: The parent of the suggestions", "count: (Optional) 1 to 10, 3 by default", "prompt: (Optional) What to ask for"},
		Examples:  []string{"gen run .", `gen run . 5 "sightseeing spots"`},
	},
	{
		Scope:     "gen",
		Operation: "accept",
		ShortDesc: "Insert the suggestions",
		LongDesc:  "Adds the previewed suggestions as children and saves the prompt on the node.",
		Examples:  []string{"gen accept"},
	},
	{
		Scope:     "gen",
		Operation: "discard",
		ShortDesc: "Drop the suggestions",
		LongDesc:  "Discards the preview.",
		Examples:  []string{"gen discard"},
	},
	{
		Scope:     "gen",
		Operation: "prompt",
		ShortDesc: "Show or set a node's prompt",
		LongDesc:  "Shows the saved generation prompt of a node, or saves a new one.",
		Examples:  []string{"gen prompt .", `gen prompt . "restaurants"`},
	},
	{
		Scope:     "system",
		Operation: "exit",
		ShortDesc: "Exit the program",
		LongDesc:  "Saves any active edit and exits.",
		Examples:  []string{"exit"},
	},
	{
		Scope:     "system",
		Operation: "quit",
		ShortDesc: "Exit the program",
		LongDesc:  "Same as exit.",
		Examples:  []string{"quit"},
	},
}
