package http

import "net/http"

// handleIndex renders the assistant UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>AgriAssist</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #222; }
        header h1 { margin-bottom: 0; }
        .subtitle { color: #666; margin-top: 0.25rem; }
        form { display: flex; flex-direction: column; gap: 0.75rem; margin: 1.5rem 0; }
        input[type=text] { padding: 0.5rem; font-size: 1rem; }
        label { font-size: 0.95rem; }
        button { padding: 0.5rem 1rem; font-size: 1rem; cursor: pointer; }
        .answer { white-space: pre-wrap; background: #f6f8f6; border-radius: 6px; padding: 1rem; }
        .weather { color: #1a5276; margin-top: 0.75rem; }
        .notice { color: #9a6700; margin-top: 0.75rem; }
        .error { color: #b03a2e; margin-top: 0.75rem; }
        .citations { margin-top: 0.75rem; font-size: 0.9rem; color: #555; }
    </style>
</head>
<body>
    <header>
        <h1>AgriAssist</h1>
        <p class="subtitle">Agricultural advice from your document corpus</p>
    </header>

    <form id="ask-form" onsubmit="ask(event)">
        <input type="text" id="question" placeholder="Ask a farming question..." autocomplete="off" required>
        <label><input type="checkbox" id="include-weather"> Include current weather</label>
        <input type="text" id="location" placeholder="Location (e.g. Delhi)">
        <button type="submit">Ask</button>
    </form>

    <div id="result"></div>

    <script>
        async function ask(e) {
            e.preventDefault();
            const result = document.getElementById('result');
            result.innerHTML = '<p>Thinking...</p>';

            const body = {
                question: document.getElementById('question').value,
                include_weather: document.getElementById('include-weather').checked,
                location: document.getElementById('location').value
            };

            try {
                const resp = await fetch('/api/ask', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify(body)
                });
                const data = await resp.json();
                render(data);
            } catch (err) {
                result.innerHTML = '<p class="error">Request failed</p>';
            }
        }

        function render(data) {
            const result = document.getElementById('result');
            let html = '';
            if (data.error) {
                html += '<p class="error">' + escapeHtml(data.error) + '</p>';
            }
            if (data.answer) {
                html += '<div class="answer">' + escapeHtml(data.answer) + '</div>';
            }
            if (data.weather) {
                html += '<p class="weather">Weather in ' + escapeHtml(data.weather.location) + ': ' +
                    data.weather.temperature_c.toFixed(1) + '°C, ' +
                    escapeHtml(data.weather.conditions) + ', precipitation ' +
                    data.weather.precipitation_mm.toFixed(1) + ' mm</p>';
            }
            if (data.notice) {
                html += '<p class="notice">' + escapeHtml(data.notice) + '</p>';
            }
            if (data.citations && data.citations.length > 0) {
                html += '<div class="citations">Sources:<ul>';
                for (const c of data.citations) {
                    html += '<li>' + escapeHtml(c.source_file) + ', page ' + c.page + '</li>';
                }
                html += '</ul></div>';
            }
            result.innerHTML = html || '<p>No answer</p>';
        }

        function escapeHtml(text) {
            const div = document.createElement('div');
            div.textContent = text;
            return div.innerHTML;
        }
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
