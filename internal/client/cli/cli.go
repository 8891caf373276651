package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/docspace-io/docspace/internal/client/auth"
	"github.com/docspace-io/docspace/internal/client/storage"
	"github.com/docspace-io/docspace/internal/client/sync"
	"github.com/docspace-io/docspace/pkg/api"
)

// Cli связывает команды терминального клиента с сервисами.
// Вывод идет в out, что позволяет перехватывать его в тестах.
type Cli struct {
	out         io.Writer
	in          io.Reader
	authService *auth.Service
	syncService *sync.Service
	spaces      SpaceAPI
	replicas    storage.ReplicaStorage
}

// SpaceAPI часть api.ClientAPI, нужная командам пространств и документов
type SpaceAPI interface {
	CreateSpace(ctx context.Context, accessToken string, req api.CreateSpaceRequest) (*api.Space, error)
	ListSpaces(ctx context.Context, accessToken string) (*api.SpaceListResponse, error)
	CreateDocument(ctx context.Context, accessToken, spaceID string, req api.CreateDocumentRequest) (*api.Document, error)
	ListDocuments(ctx context.Context, accessToken, spaceID string) (*api.DocumentListResponse, error)
	GetDocument(ctx context.Context, accessToken, docID string) (*api.Document, error)
	DeleteDocument(ctx context.Context, accessToken, docID string) error
}

// New создает новый Cli, пишущий в stdout
func New(authService *auth.Service, syncService *sync.Service, spaces SpaceAPI, replicas storage.ReplicaStorage) *Cli {
	return &Cli{
		out:         os.Stdout,
		in:          os.Stdin,
		authService: authService,
		syncService: syncService,
		spaces:      spaces,
		replicas:    replicas,
	}
}

// PrintUsage выводит справку по командам
func PrintUsage() {
	fmt.Println("DocSpace Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docspace [OPTIONS] COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version        Show version information")
	fmt.Println("  --server URL     Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH        Path to local database (default: docspace-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register                      Register new user")
	fmt.Println("  login                         Login to server")
	fmt.Println("  logout                        Logout from server")
	fmt.Println("  status                        Show session and pending changes")
	fmt.Println("  spaces                        List your spaces")
	fmt.Println("  create-space <name> <slug>    Create a new space")
	fmt.Println("  docs <space-id>               List documents of a space")
	fmt.Println("  create-doc <space-id> <title> Create a document")
	fmt.Println("  get <doc-id>                  Show a document")
	fmt.Println("  delete <doc-id>               Delete a document")
	fmt.Println("  checkout <doc-id>             Pull a document into the local replica")
	fmt.Println("  edit <doc-id> [text]          Edit local replica (text from args or stdin)")
	fmt.Println("  sync [doc-id]                 Synchronize local replicas with server")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  docspace register")
	fmt.Println("  docspace create-space 'Team Notes' team-notes")
	fmt.Println("  docspace create-doc b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5 'Meeting notes'")
	fmt.Println("  docspace edit b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5 'updated text'")
	fmt.Println("  docspace sync")
	fmt.Println("  docspace --server https://example.com login")
}

func (c *Cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Cli) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// readInput читает строку из stdin
func (c *Cli) readInput(prompt string) (string, error) {
	c.printf("%s", prompt)
	reader := bufio.NewReader(c.in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readPassword читает пароль без отображения на экране
func (c *Cli) readPassword(prompt string) (string, error) {
	c.printf("%s", prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	c.println() // Переход на новую строку после ввода пароля
	if err != nil {
		return "", err
	}
	return string(passwordBytes), nil
}
