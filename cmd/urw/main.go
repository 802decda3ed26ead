package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	baseURL := flag.String("server", envOr("URW_SERVER_URL", "http://127.0.0.1:8080"), "URL du serveur (ex: http://127.0.0.1:8080)")
	timeout := flag.Duration("timeout", 10*time.Second, "Timeout HTTP")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: urw [health|version|setup|courses|alerts|status|start|stop]")
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}

	switch args[0] {
	case "health":
		get(client, *baseURL+"/api/v1/health")
	case "version":
		get(client, *baseURL+"/api/v1/version")
	case "setup":
		setup(client, *baseURL)
	case "courses":
		get(client, *baseURL+"/api/v1/courses")
	case "alerts":
		get(client, *baseURL+"/api/v1/alerts")
	case "status":
		get(client, *baseURL+"/api/v1/watcher")
	case "start":
		post(client, *baseURL+"/api/v1/watcher/start", nil)
	case "stop":
		post(client, *baseURL+"/api/v1/watcher/stop", nil)
	default:
		fmt.Fprintln(os.Stderr, "Commande inconnue:", args[0])
		os.Exit(2)
	}
}

// setup enregistre les cours à surveiller puis démarre la surveillance.
// Le semestre et les codes sont saisis au clavier, ligne vide pour finir.
func setup(client *http.Client, baseURL string) {
	in := bufio.NewScanner(os.Stdin)

	fmt.Print("Semester code (e.g. 20262): ")
	if !in.Scan() {
		os.Exit(1)
	}
	semester := strings.TrimSpace(in.Text())
	if semester == "" {
		fmt.Fprintln(os.Stderr, "Semester is required")
		os.Exit(1)
	}

	added := 0
	for {
		fmt.Print("Course code (empty to finish): ")
		if !in.Scan() {
			break
		}
		code := strings.TrimSpace(in.Text())
		if code == "" {
			break
		}
		body, _ := json.Marshal(map[string]string{"semester": semester, "code": code})
		resp, err := client.Post(baseURL+"/api/v1/courses", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Erreur:", err)
			os.Exit(1)
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusCreated:
			added++
			fmt.Println("  added", code)
		case resp.StatusCode == http.StatusConflict:
			fmt.Println("  already watched:", code)
		default:
			fmt.Fprintf(os.Stderr, "  rejected %s: %s\n", code, strings.TrimSpace(string(b)))
		}
	}

	if added == 0 {
		fmt.Println("No new courses, nothing to do.")
		return
	}

	fmt.Printf("Starting watcher for %d course(s). Log in to UT Direct in the browser window.\n", added)
	post(client, baseURL+"/api/v1/watcher/start", nil)
}

func get(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	render(resp)
}

func post(client *http.Client, url string, body []byte) {
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
	render(resp)
}

func render(resp *http.Response) {
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	var pretty any
	if err := json.Unmarshal(b, &pretty); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(pretty)
		if resp.StatusCode >= 400 {
			os.Exit(1)
		}
		return
	}

	os.Stdout.Write(b)
	os.Stdout.Write([]byte("\n"))
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
