package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/sourcebook"
)

// resolveTodo finds a todo item in a loaded notebook by ID or text.
func resolveTodo(notebook *sourcebook.Notebook, ref string) (*sourcebook.TodoItem, error) {
	if todo := notebook.TodoByID(ref); todo != nil {
		return todo, nil
	}

	var matches []*sourcebook.TodoItem
	for _, todo := range notebook.Todos {
		if todo.Text == ref {
			matches = append(matches, todo)
		}
	}
	if len(matches) == 0 {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "todo %q not found", ref)
	}
	if len(matches) > 1 {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "todo text %q is ambiguous, use the ID", ref)
	}
	return matches[0], nil
}

// Run executes the todo add command.
func (c *TodoAddCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	todo := &sourcebook.TodoItem{
		Text:      c.Text,
		CreatedAt: time.Now().UTC(),
	}
	if err := todo.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook.Todos = append(notebook.Todos, todo)
	if err := deps.Notebooks.SaveNotebook(deps.Ctx, notebook); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added todo %q\n", todo.Text)
	return nil
}

// Run executes the todo list command.
func (c *TodoListCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if len(notebook.Todos) == 0 {
		fmt.Fprintln(deps.Stdout, "No todo items found. Use 'sourcebook todo add' to create one.")
		return nil
	}

	for _, todo := range notebook.Todos {
		mark := " "
		if todo.Done {
			mark = "x"
		}
		fmt.Fprintf(deps.Stdout, "%s  [%s] %s\n", todo.ID, mark, todo.Text)
	}

	return nil
}

// Run executes the todo done command.
func (c *TodoDoneCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	todo, err := resolveTodo(notebook, c.Todo)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	todo.Done = true
	if err := deps.Notebooks.SaveNotebook(deps.Ctx, notebook); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Marked todo %q done\n", todo.Text)
	return nil
}

// Run executes the todo delete command.
func (c *TodoDeleteCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	todo, err := resolveTodo(notebook, c.Todo)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook.RemoveTodo(todo.ID)
	if err := deps.Notebooks.SaveNotebook(deps.Ctx, notebook); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted todo %q\n", todo.Text)
	return nil
}
