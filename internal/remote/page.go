package remote

import "net/http"

func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlContent))
}

const htmlContent = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Showroom Inspector</title>
    <style>
        body {
            margin: 0;
            padding: 24px;
            font-family: monospace;
            background: #14141c;
            color: #d8d8e0;
        }
        h1 {
            font-size: 18px;
            margin: 0 0 16px 0;
        }
        #status {
            margin-bottom: 12px;
        }
        #status.connected { color: #7ec87e; }
        #status.disconnected { color: #e08080; }
        .track {
            width: 320px;
            height: 10px;
            background: #2a2a36;
            border-radius: 5px;
            overflow: hidden;
            margin-bottom: 16px;
        }
        #fill {
            height: 100%;
            width: 0;
            background: #4a90d9;
            transition: width 0.2s;
        }
        table { border-collapse: collapse; }
        td { padding: 2px 12px 2px 0; }
        td:first-child { color: #8b9cff; }
    </style>
</head>
<body>
    <h1>Showroom</h1>
    <div id="status" class="disconnected">Disconnected</div>
    <div class="track"><div id="fill"></div></div>
    <table>
        <tr><td>progress</td><td id="progress">-</td></tr>
        <tr><td>ready</td><td id="ready">-</td></tr>
        <tr><td>parts</td><td id="parts">-</td></tr>
        <tr><td>triangles</td><td id="triangles">-</td></tr>
        <tr><td>yaw</td><td id="yaw">-</td></tr>
        <tr><td>slots</td><td id="slots">-</td></tr>
        <tr><td>error</td><td id="error">-</td></tr>
    </table>

    <script>
        function connect() {
            const protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
            const ws = new WebSocket(protocol + '//' + window.location.host + '/ws');

            ws.onopen = function() {
                const el = document.getElementById('status');
                el.textContent = 'Connected';
                el.className = 'connected';
            };

            ws.onmessage = function(event) {
                const st = JSON.parse(event.data);
                document.getElementById('fill').style.width = st.progress + '%';
                document.getElementById('progress').textContent = st.progress + '%';
                document.getElementById('ready').textContent = st.ready;
                document.getElementById('parts').textContent = st.parts;
                document.getElementById('triangles').textContent = st.triangles;
                document.getElementById('yaw').textContent = st.yaw.toFixed(3);
                let slots = '-';
                if (st.slots) {
                    slots = Object.entries(st.slots).map(function(kv) {
                        return kv[0] + ':' + (kv[1] ? 'on' : 'off');
                    }).join('  ');
                }
                document.getElementById('slots').textContent = slots;
                document.getElementById('error').textContent = st.error || '-';
            };

            ws.onclose = function() {
                const el = document.getElementById('status');
                el.textContent = 'Disconnected';
                el.className = 'disconnected';
                setTimeout(connect, 3000);
            };
        }

        window.onload = connect;
    </script>
</body>
</html>
`
