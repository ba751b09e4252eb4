package model

// Command represents a user command with its scope, operation, and arguments
type Command struct {
	Scope     string
	Operation string
	Args      []string
}

// CommandResult is what a command handler hands back to the front end for display.
// Tree is set when the open tree should be redrawn; Selected and EditID then mark
// the selected node and the node being edited.
type CommandResult struct {
	Message  string
	TreeName string
	Tree     *Node
	Selected string
	EditID   string
	Trees    []*Tree
	Lines    []string
	Exit     bool
}
