package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	evalServer     string
	evalUser       string
	evalSlide      string
	evalAudio      string
	evalTranscript string
	evalNotify     string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Submit a presentation to a running podium server",
	Long: `Upload a slide deck and an audio recording to a podium server and
print the evaluation stream as it arrives, one JSON event per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if evalUser == "" || evalSlide == "" || evalAudio == "" {
			return fmt.Errorf("--user, --slide and --audio are required")
		}

		body, contentType, err := buildSubmissionBody()
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(cmd.Context(),
			http.MethodPost, evalServer+"/evaluate", body)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("server rejected submission: %s: %s",
				resp.Status, bytes.TrimSpace(msg))
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
		for scanner.Scan() {
			fmt.Fprintln(cmd.OutOrStdout(), scanner.Text())
		}
		return scanner.Err()
	},
}

func buildSubmissionBody() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("user_id", evalUser); err != nil {
		return nil, "", err
	}
	if evalNotify != "" {
		if err := mw.WriteField("notify_email", evalNotify); err != nil {
			return nil, "", err
		}
	}
	if evalTranscript != "" {
		text, err := os.ReadFile(evalTranscript)
		if err != nil {
			return nil, "", fmt.Errorf("read transcript: %w", err)
		}
		if err := mw.WriteField("transcript", string(text)); err != nil {
			return nil, "", err
		}
	}
	if err := attachFile(mw, "slide", evalSlide); err != nil {
		return nil, "", err
	}
	if err := attachFile(mw, "audio", evalAudio); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func attachFile(mw *multipart.Writer, field, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", field, err)
	}
	fw, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = fw.Write(data)
	return err
}

func init() {
	evaluateCmd.Flags().StringVar(&evalServer, "server", "http://localhost:8080", "podium server URL")
	evaluateCmd.Flags().StringVar(&evalUser, "user", "", "user id the evaluation is recorded under")
	evaluateCmd.Flags().StringVar(&evalSlide, "slide", "", "path to the slide deck (PDF)")
	evaluateCmd.Flags().StringVar(&evalAudio, "audio", "", "path to the audio recording")
	evaluateCmd.Flags().StringVar(&evalTranscript, "transcript", "", "path to a transcript; omit to transcribe server-side")
	evaluateCmd.Flags().StringVar(&evalNotify, "notify", "", "email address to notify when done")
}
