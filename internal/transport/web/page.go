package web

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Medical Chatbot</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #1f2933; }
  h1 { font-size: 1.4rem; }
  #log { border: 1px solid #d9e2ec; border-radius: 8px; padding: 1rem; height: 60vh; overflow-y: auto; background: #f8fafc; }
  .msg { margin: .5rem 0; white-space: pre-wrap; }
  .user { text-align: right; color: #0b69a3; }
  .bot { color: #243b53; }
  form { display: flex; gap: .5rem; margin-top: 1rem; }
  input[type=text] { flex: 1; padding: .6rem; border: 1px solid #bcccdc; border-radius: 6px; }
  button { padding: .6rem 1rem; border: 0; border-radius: 6px; background: #0b69a3; color: #fff; cursor: pointer; }
  button.secondary { background: #829ab1; }
  small { color: #627d98; }
</style>
</head>
<body>
<h1>Medical Chatbot</h1>
<div id="log"></div>
<form id="form">
  <input type="text" id="msg" name="msg" placeholder="Ask a medical question..." autocomplete="off" required>
  <button type="submit">Send</button>
  <button type="button" class="secondary" id="clear">Clear</button>
</form>
<p><small>This is for educational purposes only and not a substitute for professional medical advice.</small></p>
<script>
const log = document.getElementById("log");
const input = document.getElementById("msg");

function add(text, cls) {
  const div = document.createElement("div");
  div.className = "msg " + cls;
  div.textContent = text;
  log.appendChild(div);
  log.scrollTop = log.scrollHeight;
}

document.getElementById("form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const text = input.value;
  if (!text.trim()) return;
  add(text, "user");
  input.value = "";
  const body = new URLSearchParams({ msg: text });
  try {
    const res = await fetch("/get", { method: "POST", body });
    add(await res.text(), "bot");
  } catch (err) {
    add("Network error. Please try again.", "bot");
  }
});

document.getElementById("clear").addEventListener("click", async () => {
  await fetch("/api/clear", { method: "POST" });
  log.innerHTML = "";
});
</script>
</body>
</html>
`
